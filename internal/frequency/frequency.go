// Package frequency maps billing cadences to visit counts.
package frequency

import (
	"strings"
)

// Key identifies a billing frequency.
type Key string

const (
	OneTime       Key = "oneTime"
	Weekly        Key = "weekly"
	Biweekly      Key = "biweekly"
	TwicePerMonth Key = "twicePerMonth"
	Monthly       Key = "monthly"
	Bimonthly     Key = "bimonthly"
	Quarterly     Key = "quarterly"
	Biannual      Key = "biannual"
	Annual        Key = "annual"
)

// Default is used whenever a frequency cannot be resolved.
const Default = Weekly

// Entry describes how a frequency bills.
type Entry struct {
	// AnnualMultiplier is the number of visits per year.
	AnnualMultiplier float64
	// MonthlyMultiplier is the number of visits billed per month; 0 for visit-based keys.
	MonthlyMultiplier float64
	// VisitBased frequencies are priced by counting visits, not by a monthly rate.
	VisitBased bool
}

var table = map[Key]Entry{
	OneTime:       {AnnualMultiplier: 1, MonthlyMultiplier: 0, VisitBased: true},
	Weekly:        {AnnualMultiplier: 52, MonthlyMultiplier: 4.33},
	Biweekly:      {AnnualMultiplier: 26, MonthlyMultiplier: 2.165},
	TwicePerMonth: {AnnualMultiplier: 24, MonthlyMultiplier: 2},
	Monthly:       {AnnualMultiplier: 12, MonthlyMultiplier: 1},
	Bimonthly:     {AnnualMultiplier: 6, MonthlyMultiplier: 0, VisitBased: true},
	Quarterly:     {AnnualMultiplier: 4, MonthlyMultiplier: 0, VisitBased: true},
	Biannual:      {AnnualMultiplier: 2, MonthlyMultiplier: 0, VisitBased: true},
	Annual:        {AnnualMultiplier: 1, MonthlyMultiplier: 0, VisitBased: true},
}

// All returns every frequency in display order.
func All() []Key {
	return []Key{OneTime, Weekly, Biweekly, TwicePerMonth, Monthly, Bimonthly, Quarterly, Biannual, Annual}
}

// aliases accepts the spellings found in older saved agreements and remote configs.
var aliases = map[string]Key{
	"onetime":       OneTime,
	"one-time":      OneTime,
	"one_time":      OneTime,
	"weekly":        Weekly,
	"biweekly":      Biweekly,
	"bi-weekly":     Biweekly,
	"twicepermonth": TwicePerMonth,
	"2xmonth":       TwicePerMonth,
	"semimonthly":   TwicePerMonth,
	"monthly":       Monthly,
	"bimonthly":     Bimonthly,
	"bi-monthly":    Bimonthly,
	"every2months":  Bimonthly,
	"quarterly":     Quarterly,
	"biannual":      Biannual,
	"semiannual":    Biannual,
	"annual":        Annual,
	"annually":      Annual,
	"yearly":        Annual,
}

// Parse resolves s to a Key. Unrecognized input resolves to Default.
func Parse(s string) Key {
	k, _ := Lookup(s)
	return k
}

// Lookup is Parse that also reports whether s was recognized.
func Lookup(s string) (Key, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if k, ok := aliases[norm]; ok {
		return k, true
	}
	return Default, false
}

// Valid reports whether k is one of the nine known frequencies.
func (k Key) Valid() bool {
	_, ok := table[k]
	return ok
}

func (k Key) String() string {
	return string(k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; unknown values decode to Default.
func (k *Key) UnmarshalText(b []byte) error {
	*k = Parse(string(b))
	return nil
}

func entry(k Key) Entry {
	if e, ok := table[k]; ok {
		return e
	}
	return table[Default]
}

// EntryFor returns the table entry for k. Unknown keys behave as Default, as do all the
// accessors below.
func EntryFor(k Key) Entry {
	return entry(k)
}

func VisitsPerYear(k Key) float64 {
	return entry(k).AnnualMultiplier
}

// MonthlyMultiplier is the billing multiplier used to turn a per-visit price into a monthly
// recurring charge. It is 0 for visit-based frequencies.
func MonthlyMultiplier(k Key) float64 {
	return entry(k).MonthlyMultiplier
}

// VisitsPerMonth is the average number of visits in a month. Monthly-billed keys use their fixed
// billing constant; recurring visit-based keys spread their annual visits over twelve months;
// oneTime has none.
func VisitsPerMonth(k Key) float64 {
	e := entry(k)
	if !e.VisitBased {
		return e.MonthlyMultiplier
	}
	if k == OneTime {
		return 0
	}
	return e.AnnualMultiplier / 12
}

func IsVisitBased(k Key) bool {
	return entry(k).VisitBased
}
