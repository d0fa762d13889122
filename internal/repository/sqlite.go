package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kljl6773-hub/SafetyNevi/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			disaster_type TEXT NOT NULL,
			area TEXT NOT NULL,
			sent_date TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS disaster_zones (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			disaster_type TEXT NOT NULL,
			latitude REAL,
			longitude REAL,
			radius REAL,
			area_name TEXT NOT NULL DEFAULT '',
			start_time DATETIME NOT NULL,
			expiry_time DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS facilities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			operating_status TEXT,
			max_capacity INTEGER,
			area_m2 REAL,
			location_type TEXT,
			sub_type TEXT,
			phone_number TEXT,
			bed_count INTEGER,
			staff_count INTEGER,
			branch TEXT,
			region TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_zones_expiry ON disaster_zones(expiry_time);
		CREATE INDEX IF NOT EXISTS idx_facilities_kind ON facilities(kind);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// --- alerts ---

func (s *SQLiteDB) AddAlert(ctx context.Context, a *models.Alert) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (disaster_type, area, sent_date, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.DisasterType, a.Area, a.SentDate, a.Content, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting alert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading alert id: %w", err)
	}
	a.ID = id
	return nil
}

func (s *SQLiteDB) LatestAlert(ctx context.Context) (*models.Alert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, disaster_type, area, sent_date, content, created_at
		 FROM alerts ORDER BY id DESC LIMIT 1`)

	var a models.Alert
	err := row.Scan(&a.ID, &a.DisasterType, &a.Area, &a.SentDate, &a.Content, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning latest alert: %w", err)
	}
	return &a, nil
}

func (s *SQLiteDB) ListAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, disaster_type, area, sent_date, content, created_at
		 FROM alerts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.DisasterType, &a.Area, &a.SentDate, &a.Content, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// --- disaster zones ---

func (s *SQLiteDB) AddZone(ctx context.Context, z *models.DisasterZone) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO disaster_zones (disaster_type, latitude, longitude, radius, area_name, start_time, expiry_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		z.DisasterType, z.Latitude, z.Longitude, z.Radius, z.AreaName, z.StartTime, z.ExpiryTime)
	if err != nil {
		return fmt.Errorf("error inserting zone: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading zone id: %w", err)
	}
	z.ID = id
	return nil
}

func (s *SQLiteDB) GetZone(ctx context.Context, id int64) (*models.DisasterZone, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, disaster_type, latitude, longitude, radius, area_name, start_time, expiry_time
		 FROM disaster_zones WHERE id = ?`, id)

	var z models.DisasterZone
	err := row.Scan(&z.ID, &z.DisasterType, &z.Latitude, &z.Longitude, &z.Radius, &z.AreaName, &z.StartTime, &z.ExpiryTime)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning zone: %w", err)
	}
	return &z, nil
}

func (s *SQLiteDB) DeleteZone(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM disaster_zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting zone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) ListZones(ctx context.Context) ([]models.DisasterZone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, disaster_type, latitude, longitude, radius, area_name, start_time, expiry_time
		 FROM disaster_zones ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing zones: %w", err)
	}
	defer rows.Close()

	var zones []models.DisasterZone
	for rows.Next() {
		var z models.DisasterZone
		if err := rows.Scan(&z.ID, &z.DisasterType, &z.Latitude, &z.Longitude, &z.Radius, &z.AreaName, &z.StartTime, &z.ExpiryTime); err != nil {
			return nil, fmt.Errorf("error scanning zone: %w", err)
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (s *SQLiteDB) CountZones(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM disaster_zones`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting zones: %w", err)
	}
	return count, nil
}

// --- facilities ---

const facilityColumns = `id, kind, name, address, latitude, longitude,
	operating_status, max_capacity, area_m2, location_type,
	sub_type, phone_number, bed_count, staff_count, branch, region`

func (s *SQLiteDB) AddFacility(ctx context.Context, f *models.Facility) error {
	var (
		opStatus, locationType, subType, phone, branch, region sql.NullString
		maxCap, bedCount, staffCount                           sql.NullInt64
		areaM2                                                 sql.NullFloat64
	)

	switch f.Kind {
	case models.FacilityShelter:
		if f.Shelter != nil {
			opStatus = sql.NullString{String: f.Shelter.OperatingStatus, Valid: true}
			locationType = sql.NullString{String: f.Shelter.LocationType, Valid: true}
			if f.Shelter.MaxCapacity != nil {
				maxCap = sql.NullInt64{Int64: int64(*f.Shelter.MaxCapacity), Valid: true}
			}
			if f.Shelter.AreaM2 != nil {
				areaM2 = sql.NullFloat64{Float64: *f.Shelter.AreaM2, Valid: true}
			}
		}
	case models.FacilityHospital:
		if f.Hospital != nil {
			opStatus = sql.NullString{String: f.Hospital.OperatingStatus, Valid: true}
			subType = sql.NullString{String: f.Hospital.SubType, Valid: true}
			phone = sql.NullString{String: f.Hospital.PhoneNumber, Valid: true}
			if f.Hospital.BedCount != nil {
				bedCount = sql.NullInt64{Int64: int64(*f.Hospital.BedCount), Valid: true}
			}
			if f.Hospital.StaffCount != nil {
				staffCount = sql.NullInt64{Int64: int64(*f.Hospital.StaffCount), Valid: true}
			}
		}
	case models.FacilityPolice:
		if f.Police != nil {
			phone = sql.NullString{String: f.Police.PhoneNumber, Valid: true}
			branch = sql.NullString{String: f.Police.Branch, Valid: true}
			region = sql.NullString{String: f.Police.Region, Valid: true}
		}
	case models.FacilityFire:
		if f.Fire != nil {
			phone = sql.NullString{String: f.Fire.PhoneNumber, Valid: true}
			subType = sql.NullString{String: f.Fire.SubType, Valid: true}
		}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO facilities (kind, name, address, latitude, longitude,
			operating_status, max_capacity, area_m2, location_type,
			sub_type, phone_number, bed_count, staff_count, branch, region)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(f.Kind), f.Name, f.Address, f.Latitude, f.Longitude,
		opStatus, maxCap, areaM2, locationType,
		subType, phone, bedCount, staffCount, branch, region)
	if err != nil {
		return fmt.Errorf("error inserting facility: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading facility id: %w", err)
	}
	f.ID = id
	return nil
}

func (s *SQLiteDB) GetFacility(ctx context.Context, id int64) (*models.Facility, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+facilityColumns+` FROM facilities WHERE id = ?`, id)
	f, err := scanFacility(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning facility: %w", err)
	}
	return f, nil
}

func (s *SQLiteDB) ListShelters(ctx context.Context) ([]models.Shelter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, latitude, longitude, operating_status, max_capacity
		 FROM facilities WHERE kind = ? ORDER BY id`, string(models.FacilityShelter))
	if err != nil {
		return nil, fmt.Errorf("error listing shelters: %w", err)
	}
	defer rows.Close()

	var shelters []models.Shelter
	for rows.Next() {
		var (
			sh       models.Shelter
			status   sql.NullString
			capacity sql.NullInt64
		)
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.Latitude, &sh.Longitude, &status, &capacity); err != nil {
			return nil, fmt.Errorf("error scanning shelter: %w", err)
		}
		sh.OperatingStatus = status.String
		sh.MaxCapacity = int(capacity.Int64)
		shelters = append(shelters, sh)
	}
	return shelters, rows.Err()
}

func (s *SQLiteDB) FindFacilitiesInBounds(ctx context.Context, kind models.FacilityKind, swLat, swLng, neLat, neLng float64) ([]models.Facility, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+facilityColumns+` FROM facilities
		 WHERE kind = ? AND latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?
		 ORDER BY id`,
		string(kind), swLat, neLat, swLng, neLng)
	if err != nil {
		return nil, fmt.Errorf("error querying facilities in bounds: %w", err)
	}
	defer rows.Close()

	var facilities []models.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning facility: %w", err)
		}
		facilities = append(facilities, *f)
	}
	return facilities, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFacility(row rowScanner) (*models.Facility, error) {
	var (
		f                                                      models.Facility
		kind                                                   string
		opStatus, locationType, subType, phone, branch, region sql.NullString
		maxCap, bedCount, staffCount                           sql.NullInt64
		areaM2                                                 sql.NullFloat64
	)
	err := row.Scan(&f.ID, &kind, &f.Name, &f.Address, &f.Latitude, &f.Longitude,
		&opStatus, &maxCap, &areaM2, &locationType,
		&subType, &phone, &bedCount, &staffCount, &branch, &region)
	if err != nil {
		return nil, err
	}
	f.Kind = models.FacilityKind(kind)

	switch f.Kind {
	case models.FacilityShelter:
		d := &models.ShelterDetail{
			OperatingStatus: opStatus.String,
			LocationType:    locationType.String,
		}
		if maxCap.Valid {
			c := int(maxCap.Int64)
			d.MaxCapacity = &c
		}
		if areaM2.Valid {
			a := areaM2.Float64
			d.AreaM2 = &a
		}
		f.Shelter = d
	case models.FacilityHospital:
		d := &models.HospitalDetail{
			OperatingStatus: opStatus.String,
			SubType:         subType.String,
			PhoneNumber:     phone.String,
		}
		if bedCount.Valid {
			b := int(bedCount.Int64)
			d.BedCount = &b
		}
		if staffCount.Valid {
			c := int(staffCount.Int64)
			d.StaffCount = &c
		}
		f.Hospital = d
	case models.FacilityPolice:
		f.Police = &models.PoliceDetail{
			PhoneNumber: phone.String,
			Branch:      branch.String,
			Region:      region.String,
		}
	case models.FacilityFire:
		f.Fire = &models.FireDetail{
			PhoneNumber: phone.String,
			SubType:     subType.String,
		}
	}

	return &f, nil
}
