package model

import "strings"

// NotAvailable is the universal sentinel for information a source document
// does not provide. It is a first-class value, never an error.
const NotAvailable = "Not Available"

// Tri-state values for fields a document may assert, deny, or not mention.
const (
	TriYes          = "yes"
	TriNo           = "no"
	TriNotMentioned = "not_mentioned"
)

type Evidence struct {
	Page  int    `json:"page"`
	Quote string `json:"quote"`
}

type Measurement struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type TemperatureReading struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type InspectionFact struct {
	Area          string        `json:"area"`
	Observation   string        `json:"observation"`
	VisibleIssue  string        `json:"visible_issue"`
	MoistureSigns string        `json:"moisture_signs"`
	Measurements  []Measurement `json:"measurements"`
	Notes         string        `json:"notes"`
	Evidence      []Evidence    `json:"evidence"`
}

type ThermalFact struct {
	Area                string               `json:"area"`
	ThermalAnomaly      string               `json:"thermal_anomaly"`
	TemperatureReadings []TemperatureReading `json:"temperature_readings"`
	SuspectedIssue      string               `json:"suspected_issue"`
	Notes               string               `json:"notes"`
	Evidence            []Evidence           `json:"evidence"`
}

type InspectionFactsDoc struct {
	Source                      string           `json:"source"`
	Facts                       []InspectionFact `json:"facts"`
	MissingOrUnclearInformation []string         `json:"missing_or_unclear_information"`
}

type ThermalFactsDoc struct {
	Source                      string        `json:"source"`
	Facts                       []ThermalFact `json:"facts"`
	MissingOrUnclearInformation []string      `json:"missing_or_unclear_information"`
}

// Statement renders the fact as a single observation statement. Non-sentinel
// parts are joined with " | "; tri-state fields are rendered as marker
// tokens so downstream keyword matching can see them.
func (f InspectionFact) Statement() string {
	var parts []string
	if f.Observation != "" && f.Observation != NotAvailable {
		parts = append(parts, f.Observation)
	}
	if f.VisibleIssue != "" && f.VisibleIssue != NotAvailable {
		parts = append(parts, f.VisibleIssue)
	}
	if f.MoistureSigns != "" && f.MoistureSigns != TriNotMentioned {
		parts = append(parts, "moisture_signs="+f.MoistureSigns)
	}
	if f.Notes != "" && f.Notes != NotAvailable {
		parts = append(parts, f.Notes)
	}
	if len(parts) == 0 {
		return NotAvailable
	}
	return strings.Join(parts, " | ")
}

func (f ThermalFact) Statement() string {
	var parts []string
	if f.SuspectedIssue != "" && f.SuspectedIssue != NotAvailable {
		parts = append(parts, f.SuspectedIssue)
	}
	if f.ThermalAnomaly != "" && f.ThermalAnomaly != TriNotMentioned {
		parts = append(parts, "thermal_anomaly="+f.ThermalAnomaly)
	}
	var temps []string
	for _, t := range f.TemperatureReadings {
		if (t.Label != "" && t.Label != NotAvailable) || (t.Value != "" && t.Value != NotAvailable) {
			temps = append(temps, t.Label+":"+t.Value)
		}
	}
	if len(temps) > 0 {
		parts = append(parts, "temps="+strings.Join(temps, "; "))
	}
	if f.Notes != "" && f.Notes != NotAvailable {
		parts = append(parts, f.Notes)
	}
	if len(parts) == 0 {
		return NotAvailable
	}
	return strings.Join(parts, " | ")
}

// AsObservation bridges a structured fact into the merge engine's model.
func (f InspectionFact) AsObservation() Observation {
	return Observation{
		Area:     f.Area,
		Source:   SourceInspection,
		Text:     f.Statement(),
		Evidence: f.Evidence,
	}
}

func (f ThermalFact) AsObservation() Observation {
	return Observation{
		Area:     f.Area,
		Source:   SourceThermal,
		Text:     f.Statement(),
		Evidence: f.Evidence,
	}
}

// Normalize fills sentinel defaults for fields the extraction response
// omitted, so empty strings never masquerade as data, and pins the
// document source.
func (d *InspectionFactsDoc) Normalize() {
	d.Source = DocInspection
	for i := range d.Facts {
		f := &d.Facts[i]
		f.Area = orNotAvailable(f.Area)
		f.Observation = orNotAvailable(f.Observation)
		f.VisibleIssue = orNotAvailable(f.VisibleIssue)
		if f.MoistureSigns == "" {
			f.MoistureSigns = TriNotMentioned
		}
		for j := range f.Measurements {
			f.Measurements[j].Name = orNotAvailable(f.Measurements[j].Name)
			f.Measurements[j].Value = orNotAvailable(f.Measurements[j].Value)
		}
		f.Notes = orNotAvailable(f.Notes)
		normalizeEvidence(f.Evidence)
	}
	if d.Facts == nil {
		d.Facts = []InspectionFact{}
	}
	if d.MissingOrUnclearInformation == nil {
		d.MissingOrUnclearInformation = []string{}
	}
}

func (d *ThermalFactsDoc) Normalize() {
	d.Source = DocThermal
	for i := range d.Facts {
		f := &d.Facts[i]
		f.Area = orNotAvailable(f.Area)
		if f.ThermalAnomaly == "" {
			f.ThermalAnomaly = TriNotMentioned
		}
		for j := range f.TemperatureReadings {
			f.TemperatureReadings[j].Label = orNotAvailable(f.TemperatureReadings[j].Label)
			f.TemperatureReadings[j].Value = orNotAvailable(f.TemperatureReadings[j].Value)
		}
		f.SuspectedIssue = orNotAvailable(f.SuspectedIssue)
		f.Notes = orNotAvailable(f.Notes)
		normalizeEvidence(f.Evidence)
	}
	if d.Facts == nil {
		d.Facts = []ThermalFact{}
	}
	if d.MissingOrUnclearInformation == nil {
		d.MissingOrUnclearInformation = []string{}
	}
}

// Observations converts every fact for the merge engine.
func (d InspectionFactsDoc) Observations() []Observation {
	out := make([]Observation, 0, len(d.Facts))
	for _, f := range d.Facts {
		out = append(out, f.AsObservation())
	}
	return out
}

func (d ThermalFactsDoc) Observations() []Observation {
	out := make([]Observation, 0, len(d.Facts))
	for _, f := range d.Facts {
		out = append(out, f.AsObservation())
	}
	return out
}

func normalizeEvidence(ev []Evidence) {
	for i := range ev {
		if strings.TrimSpace(ev[i].Quote) == "" {
			ev[i].Quote = NotAvailable
		}
	}
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
