package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paytrack/internal/model"
	"github.com/theirongolddev/paytrack/internal/schedule"
)

// Document is the shared data file.
type Document struct {
	Services    []Service `json:"services"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Service is one obligation as stored in the shared file.
type Service struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Name         string  `json:"name,omitempty"`
	Amount       Amount  `json:"amount"`
	DueDay       int     `json:"dueDay"`
	PeriodMonths int     `json:"periodMonths"`
	Paid         bool    `json:"paid"`
	PaidDate     *string `json:"paidDate"`
	PaidAmount   *Amount `json:"paidAmount,omitempty"`
	CustomName   string  `json:"customName,omitempty"`
	CustomEmoji  string  `json:"customEmoji,omitempty"`
	CreatedAt    string  `json:"createdAt,omitempty"`
}

// Amount is a decimal encoded as a bare JSON number.
type Amount decimal.Decimal

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*a = Amount(decimal.Zero)
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}

// FromObligations converts the local collection to the wire form.
func FromObligations(obs []model.Obligation, now time.Time) Document {
	doc := Document{Services: make([]Service, 0, len(obs)), LastUpdated: now.UTC()}
	for _, o := range obs {
		svc := Service{
			ID:           o.ID,
			Type:         string(o.Category.Kind),
			Name:         o.Name(),
			Amount:       Amount(o.Amount),
			DueDay:       o.DueDay,
			PeriodMonths: int(o.Period),
			Paid:         o.Paid,
		}
		if o.Category.IsCustom() {
			svc.CustomName = o.Category.Name()
			svc.CustomEmoji = o.Category.Symbol()
		}
		if o.PaidDate != nil {
			s := o.PaidDate.UTC().Format(time.RFC3339)
			svc.PaidDate = &s
		}
		if o.PaidAmount != nil {
			a := Amount(*o.PaidAmount)
			svc.PaidAmount = &a
		}
		if !o.CreatedAt.IsZero() {
			svc.CreatedAt = o.CreatedAt.UTC().Format(time.RFC3339)
		}
		doc.Services = append(doc.Services, svc)
	}
	return doc
}

// Obligations converts the wire form to validated obligations. A missing
// periodMonths is read as monthly.
func (d Document) Obligations() ([]model.Obligation, error) {
	out := make([]model.Obligation, 0, len(d.Services))
	for i, s := range d.Services {
		cat, err := model.ParseCategory(s.Type, s.CustomName, s.CustomEmoji)
		if err != nil {
			return nil, fmt.Errorf("service %d (%s): %w", i, s.ID, err)
		}
		period := model.Period(s.PeriodMonths)
		if s.PeriodMonths == 0 {
			period = model.Monthly
		}
		o := model.Obligation{
			ID:       s.ID,
			Category: cat,
			Amount:   decimal.Decimal(s.Amount),
			DueDay:   s.DueDay,
			Period:   period,
			Paid:     s.Paid,
		}
		if s.PaidDate != nil {
			if t, ok := parseWireTime(*s.PaidDate); ok {
				o.PaidDate = &t
			}
		}
		if s.PaidAmount != nil {
			a := decimal.Decimal(*s.PaidAmount)
			o.PaidAmount = &a
		}
		o.CreatedAt, _ = parseWireTime(s.CreatedAt)
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("service %d (%s): %w", i, s.ID, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func parseWireTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(schedule.DayLayout, s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// encode renders the document the way the file is kept in the repository.
func (d Document) encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func decodeDocument(b []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return d, fmt.Errorf("remote: parsing document: %w", err)
	}
	return d, nil
}

// contentsResponse is the GET /contents reply.
type contentsResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// putRequest is the PUT /contents body.
type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

// putResponse is the PUT /contents reply.
type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}
