package projects

import "time"

// Status is the lifecycle phase of a monitored structure.
type Status string

const (
	StatusPlanning     Status = "planning"
	StatusInstallation Status = "installation"
	StatusMonitoring   Status = "monitoring"
	StatusInactive     Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusInstallation, StatusMonitoring, StatusInactive:
		return true
	}
	return false
}

// Coordinates locate a structure.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Project is a monitored structure.
type Project struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Code             string      `json:"code"`
	Address          string      `json:"address"`
	Coordinates      Coordinates `json:"coordinates"`
	StructureType    string      `json:"structureType"`
	DestinationUse   string      `json:"destinationUse"`
	ConstructionYear int         `json:"constructionYear"`
	SeismicZone      int         `json:"seismicZone"`
	EstimatedValue   float64     `json:"estimatedValue"`
	FloorArea        float64     `json:"floorArea"`
	RiskClass        string      `json:"riskClass"`
	Status           Status      `json:"status"`
	OwnerID          string      `json:"ownerId"`
	SensorCount      int         `json:"sensorCount"`
	ActiveSensors    int         `json:"activeSensors"`
	AlarmsCount      int         `json:"alarmsCount"`
	MemberIDs        []string    `json:"-"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// HasMember reports whether userID holds a grant on the project.
func (p Project) HasMember(userID string) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (p Project) Clone() Project {
	out := p
	out.MemberIDs = append([]string(nil), p.MemberIDs...)
	return out
}
