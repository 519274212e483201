// Copyright (C) 2023 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package locale provides the number and date
// conventions of a language: separators, short date
// order and the decimals of numeric format keys.
package locale

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/SnellerInc/predicate/date"
)

// Well-known format keys.
const (
	// FormatGeneral formats numbers in their
	// shortest exact form.
	FormatGeneral = 0
	// FormatInteger formats numbers without decimals.
	FormatInteger = 1
	// FormatFixed formats numbers with two decimals.
	FormatFixed = 2
)

// Formatter converts numbers and dates between
// their internal form and the text of a locale.
type Formatter struct {
	tag      language.Tag
	dec      rune
	group    rune
	order    date.Order
	datesep  byte
	decimals map[int]int
}

// Option configures a Formatter.
type Option func(f *Formatter)

// WithDecimals registers the number of
// decimals used by the format key.
func WithDecimals(key, decimals int) Option {
	return func(f *Formatter) { f.decimals[key] = decimals }
}

// WithDateOrder overrides the short date
// order and separator of the locale.
func WithDateOrder(o date.Order, sep byte) Option {
	return func(f *Formatter) { f.order, f.datesep = o, sep }
}

// New returns the Formatter for tag.
func New(tag language.Tag, opts ...Option) *Formatter {
	f := &Formatter{
		tag: tag,
		decimals: map[int]int{
			FormatGeneral: -1,
			FormatInteger: 0,
			FormatFixed:   2,
		},
	}
	f.dec, f.group = separators(tag)
	f.order, f.datesep = dateOrder(tag)
	for _, o := range opts {
		o(f)
	}
	return f
}

// Parse returns the Formatter for the BCP 47
// language tag s, such as "de-DE".
func Parse(s string, opts ...Option) (*Formatter, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("locale.Parse: %w", err)
	}
	return New(tag, opts...), nil
}

// separators derives the decimal and grouping
// separators from the CLDR number format of tag
func separators(tag language.Tag) (dec, group rune) {
	dec, group = '.', ','
	s := message.NewPrinter(tag).Sprint(number.Decimal(1234567.5))
	var seps []rune
	for _, r := range s {
		if !unicode.IsDigit(r) {
			seps = append(seps, r)
		}
	}
	switch len(seps) {
	case 0:
	case 1:
		dec = seps[0]
	default:
		group, dec = seps[0], seps[len(seps)-1]
	}
	if group == dec {
		group = 0
	}
	return dec, group
}

// dateOrder returns the short date convention of tag
func dateOrder(tag language.Tag) (date.Order, byte) {
	base, _ := tag.Base()
	region, _ := tag.Region()
	switch base.String() {
	case "en":
		switch region.String() {
		case "US", "PH", "CA":
			return date.MDY, '/'
		}
		return date.DMY, '/'
	case "de", "ru", "pl", "cs", "fi", "nb", "no", "da", "tr", "uk", "sk":
		return date.DMY, '.'
	case "fr", "es", "it", "pt", "el":
		return date.DMY, '/'
	case "nl":
		return date.DMY, '-'
	case "ja", "zh", "ko", "hu", "sv", "lt":
		return date.YMD, '-'
	}
	return date.YMD, '-'
}

// Tag returns the language of f.
func (f *Formatter) Tag() language.Tag { return f.tag }

// DecimalSeparator returns the decimal separator.
func (f *Formatter) DecimalSeparator() rune { return f.dec }

// GroupSeparator returns the thousands separator,
// or 0 if the locale does not group digits.
func (f *Formatter) GroupSeparator() rune { return f.group }

// DateOrder returns the short date order
// and the date component separator.
func (f *Formatter) DateOrder() (date.Order, byte) { return f.order, f.datesep }

// Decimals returns the number of decimals of the
// format key, or -1 for the shortest exact form.
func (f *Formatter) Decimals(formatKey int) int {
	if d, ok := f.decimals[formatKey]; ok {
		return d
	}
	return -1
}

// ParseNumber parses s written with the separators
// of the locale. Thousands separators are ignored.
func (f *Formatter) ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case f.group != 0 && r == f.group:
		case r == f.dec:
			b.WriteByte('.')
		default:
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("locale.ParseNumber: %q is not a number", s)
	}
	return v, nil
}

// FormatNumber formats v with the decimal separator
// of the locale and without thousands separators.
// A negative decimals produces the shortest exact form.
func (f *Formatter) FormatNumber(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if f.dec != '.' {
		s = strings.Replace(s, ".", string(f.dec), 1)
	}
	return s
}

// ParseDate parses a date, clock or timestamp
// in the short date order of the locale.
func (f *Formatter) ParseDate(s string) (date.Time, date.Fields, error) {
	t, fields, ok := date.ParseOrder(s, f.order)
	if !ok {
		return date.Time{}, 0, fmt.Errorf("locale.ParseDate: %q is not a date", s)
	}
	return t, fields, nil
}

// FormatDate formats the given fields of t the
// way ParseDate reads them.
func (f *Formatter) FormatDate(t date.Time, fields date.Fields) string {
	var b []byte
	if fields.Has(date.DateField) {
		b = t.AppendOrder(b, f.order, f.datesep)
	}
	if fields.Has(date.ClockField) {
		if len(b) > 0 {
			b = append(b, ' ')
		}
		b = t.AppendClock(b)
	}
	return string(b)
}
