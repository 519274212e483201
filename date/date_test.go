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

package date

import (
	"math/rand"
	"testing"
	"time"
)

func TestParseOrder(t *testing.T) {
	testcases := []struct {
		in     string
		order  Order
		want   string
		fields Fields
	}{
		{"2023-01-31", YMD, "2023-01-31 00:00:00", DateField},
		{" 2023-01-31 ", DMY, "2023-01-31 00:00:00", DateField},
		{"31.01.2023", DMY, "2023-01-31 00:00:00", DateField},
		{"31.1.23", DMY, "2023-01-31 00:00:00", DateField},
		{"31.01.2023.", DMY, "2023-01-31 00:00:00", DateField},
		{"1/31/2023", MDY, "2023-01-31 00:00:00", DateField},
		{"1/31/30", MDY, "1930-01-31 00:00:00", DateField},
		{"1/31/29", MDY, "2029-01-31 00:00:00", DateField},
		{"2024-02-29", YMD, "2024-02-29 00:00:00", DateField},
		{"13:45", YMD, "0000-01-01 13:45:00", ClockField},
		{"13:45:07", DMY, "0000-01-01 13:45:07", ClockField},
		{"1:05 pm", MDY, "0000-01-01 13:05:00", ClockField},
		{"12:05 AM", MDY, "0000-01-01 00:05:00", ClockField},
		{"2023-01-31 13:45:07", YMD, "2023-01-31 13:45:07", DateField | ClockField},
		{"2023-01-31T13:45:07.25", YMD, "2023-01-31 13:45:07.25", DateField | ClockField},
		{"31.01.2023 08:00:00,5", DMY, "2023-01-31 08:00:00.5", DateField | ClockField},
	}
	for _, tc := range testcases {
		got, fields, ok := ParseOrder(tc.in, tc.order)
		if !ok {
			t.Errorf("%q (%s): not parsed", tc.in, tc.order)
			continue
		}
		if s := got.String(); s != tc.want {
			t.Errorf("%q (%s): got %s, want %s", tc.in, tc.order, s, tc.want)
		}
		if fields != tc.fields {
			t.Errorf("%q: fields %b, want %b", tc.in, fields, tc.fields)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	bad := []string{
		"",
		"hello",
		"2023-13-01",
		"2023-02-29",
		"2023-01-32",
		"2023-01/31",
		"2023-01",
		"25:00",
		"12:60",
		"13:00 PM",
		"2023-01-31 13",
		"2023-01-31 13:45 junk",
		"2023-01-31x",
	}
	for _, in := range bad {
		if got, _, ok := Parse(in); ok {
			t.Errorf("%q: parsed as %s", in, got)
		}
	}
}

func TestAppend(t *testing.T) {
	tm := Date(2023, 1, 31, 13, 45, 7, 250000000)
	if got := string(tm.AppendDate(nil)); got != "2023-01-31" {
		t.Errorf("AppendDate: %s", got)
	}
	if got := string(tm.AppendClock(nil)); got != "13:45:07.25" {
		t.Errorf("AppendClock: %s", got)
	}
	if got := string(tm.AppendOrder(nil, DMY, '.')); got != "31.01.2023" {
		t.Errorf("AppendOrder(DMY): %s", got)
	}
	if got := string(tm.AppendOrder(nil, MDY, '/')); got != "01/31/2023" {
		t.Errorf("AppendOrder(MDY): %s", got)
	}
	if !tm.HasClock() || tm.DateOnly().HasClock() {
		t.Error("bad HasClock")
	}
	if got := tm.DateOnly().String(); got != "2023-01-31 00:00:00" {
		t.Errorf("DateOnly: %s", got)
	}
}

func TestAppendInt(t *testing.T) {
	testcases := []struct {
		x, width int
		trim     bool
		want     string
	}{
		{7, 2, false, "07"},
		{2023, 4, false, "2023"},
		{12345, 4, false, "12345"},
		{-5, 2, false, "-05"},
		{250000000, 9, true, "25"},
		{5000, 9, true, "000005"},
		{1, 9, true, "000000001"},
		{0, 2, false, "00"},
	}
	for _, tc := range testcases {
		if got := string(appendInt(nil, tc.x, tc.width, tc.trim)); got != tc.want {
			t.Errorf("appendInt(%d, %d, %v) = %q, want %q", tc.x, tc.width, tc.trim, got, tc.want)
		}
	}
	for _, y := range []int{1900, 2000, 2023, 2024, 2100, 2400} {
		want := time.Date(y, 12, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366
		if isleap(y) != want {
			t.Errorf("isleap(%d) = %v", y, !want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i < 1000; i++ {
		want := Date(1+rand.Intn(9998), 1+rand.Intn(12), 1+rand.Intn(28),
			rand.Intn(24), rand.Intn(60), rand.Intn(60), 0)
		for _, o := range []Order{YMD, DMY, MDY} {
			buf := want.AppendOrder(nil, o, '/')
			buf = append(buf, ' ')
			buf = want.AppendClock(buf)
			got, fields, ok := ParseOrder(string(buf), o)
			if !ok || !got.Equal(want) || !fields.Has(DateField|ClockField) {
				t.Fatalf("%s: got %s from %s, want %s", o, got, buf, want)
			}
		}
	}
}

func TestNormalization(t *testing.T) {
	rng := func(min, max int) int {
		return min + rand.Intn(max-min)
	}
	for i := 0; i < 100000; i++ {
		y, mo, d := rng(1000, 3000), rng(-100, 100), rng(-500, 500)
		h, mi, s := rng(-100, 100), rng(-1000, 1000), rng(-1000, 1000)
		ns := rng(-1e15, 1e15)
		got := Date(y, mo, d, h, mi, s, ns)
		want := time.Date(y, time.Month(mo), d, h, mi, s, ns, time.UTC)
		for _, err := range check(got, want) {
			t.Errorf("case %d: %s: %s != %s", i, err, got, want)
			t.Error("input:", y, mo, d, h, mi, s, ns)
		}
	}
}

func BenchmarkParseOrder(b *testing.B) {
	str := "31.01.2023 13:45:07"
	b.SetBytes(int64(len(str)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, ok := ParseOrder(str, DMY)
		if !ok {
			b.Fatal("parsing failed")
		}
	}
}

func check(got Time, want time.Time) (e []string) {
	if !got.Time().Equal(want) {
		e = append(e, "as times")
	}
	if !got.Equal(FromTime(want)) {
		e = append(e, "as dates")
	}
	want = want.UTC()
	y1, mo1, d1 := got.Year(), got.Month(), got.Day()
	y2, mo2, d2 := want.Year(), want.Month(), want.Day()
	if y1 != y2 || mo1 != int(mo2) || d1 != d2 {
		e = append(e, "date parts")
	}
	h1, mi1, s1, ns1 := got.Hour(), got.Minute(), got.Second(), got.Nanosecond()
	h2, mi2, s2, ns2 := want.Hour(), want.Minute(), want.Second(), want.Nanosecond()
	if h1 != h2 || mi1 != mi2 || s1 != s2 || ns1 != ns2 {
		e = append(e, "time parts")
	}
	return e
}
