package models

// FacilityKind is the closed set of facility variants the directory
// serves. The original directory modeled these as a subclass hierarchy;
// here a tag plus per-kind payload keeps dispatch exhaustive.
type FacilityKind string

const (
	FacilityShelter  FacilityKind = "shelter"
	FacilityHospital FacilityKind = "hospital"
	FacilityPolice   FacilityKind = "police"
	FacilityFire     FacilityKind = "fire"
)

// Facility is one directory record: shared geospatial fields plus at
// most one variant payload, selected by Kind. The directory is owned
// by an external importer; this service only reads it.
type Facility struct {
	ID        int64
	Kind      FacilityKind
	Name      string
	Address   string
	Latitude  float64
	Longitude float64

	Shelter  *ShelterDetail
	Hospital *HospitalDetail
	Police   *PoliceDetail
	Fire     *FireDetail
}

// ShelterDetail carries the fields the recommendation engine reads.
// MaxCapacity is nullable in the directory; a nil value is treated as
// zero capacity.
type ShelterDetail struct {
	OperatingStatus string
	AreaM2          *float64
	MaxCapacity     *int
	LocationType    string // 지하/지상 etc.
}

type HospitalDetail struct {
	OperatingStatus string
	SubType         string // 종합병원, 의원, 보건소 ...
	PhoneNumber     string
	BedCount        *int
	StaffCount      *int
}

type PoliceDetail struct {
	PhoneNumber string
	Branch      string // 지구대/파출소
	Region      string // 관할 지방청
}

type FireDetail struct {
	PhoneNumber string
	SubType     string // 119안전센터, 구조대 ...
}

// Shelter is the projection of a shelter facility the recommendation
// engine works with.
type Shelter struct {
	ID              int64
	Name            string
	Latitude        float64
	Longitude       float64
	OperatingStatus string
	MaxCapacity     int // 0 when the directory has no value
}

// AsShelter projects a shelter-kind facility. ok is false for any
// other kind.
func (f *Facility) AsShelter() (Shelter, bool) {
	if f.Kind != FacilityShelter || f.Shelter == nil {
		return Shelter{}, false
	}
	s := Shelter{
		ID:              f.ID,
		Name:            f.Name,
		Latitude:        f.Latitude,
		Longitude:       f.Longitude,
		OperatingStatus: f.Shelter.OperatingStatus,
	}
	if f.Shelter.MaxCapacity != nil {
		s.MaxCapacity = *f.Shelter.MaxCapacity
	}
	return s, true
}
