package gosynthnv

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		query   bool
		arg     any
		sigFigs int
		want    string
	}{
		{"set frequency", CmdFrequency, false, 2450.0, DefaultSigFigs, "f2450.0000000"},
		{"query frequency", CmdFrequency, true, nil, 0, "f?"},
		{"set power", CmdPower, false, -20.0, PowerSigFigs, "W-20.000"},
		{"query power", CmdPower, true, nil, 0, "W?"},
		{"enum arg", CmdTempCompensation, false, TempComp10Sec, 0, "Z3"},
		{"int arg", CmdRawDAC, false, 4000, 0, "a4000"},
		{"bool true", CmdPLLEnable, false, true, 0, "E1"},
		{"bool false", CmdPLLEnable, false, false, 0, "E0"},
		{"string arg", CmdReferenceSource, false, "2", 0, "x2"},
		{"bare command", CmdSaveEEPROM, false, nil, 0, "e"},
		{"detector count", CmdPowerDetector, false, 5, 0, "w5"},
		{"query with arg", CmdVersion, true, 1, 0, "v1?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCommand(tt.code, tt.query, tt.arg, tt.sigFigs)
			if got != tt.want {
				t.Errorf("FormatCommand = %q, want %q", got, tt.want)
			}
			if strings.ContainsAny(got, "\r\n") {
				t.Errorf("FormatCommand %q contains a line terminator", got)
			}
		})
	}
}

func TestFormatCommand_QueryMarker(t *testing.T) {
	// Exactly one query marker, and the code segment is untouched.
	for _, code := range []string{CmdFrequency, CmdPower, CmdSweepLower, CmdReferenceFrequency} {
		got := FormatCommand(code, true, nil, 0)
		if !strings.HasPrefix(got, code) {
			t.Errorf("FormatCommand(%q) = %q, code segment altered", code, got)
		}
		if n := strings.Count(got, QueryChar); n != 1 {
			t.Errorf("FormatCommand(%q) = %q, %d query markers, want 1", code, got, n)
		}
	}
}

func TestFormatFloat_RoundTrip(t *testing.T) {
	values := []float64{0, 0.1, 12.5, 2450.0, 6399.9999999, -60.0, 19.999, -0.001, 1234.5678901}

	for digits := 0; digits <= DefaultSigFigs; digits++ {
		for _, v := range values {
			got := FormatFloat(v, digits)
			if strings.ContainsAny(got, "eE") {
				t.Fatalf("FormatFloat(%v, %d) = %q uses scientific notation", v, digits, got)
			}
			parsed, err := strconv.ParseFloat(got, 64)
			if err != nil {
				t.Fatalf("FormatFloat(%v, %d) = %q does not parse: %v", v, digits, got, err)
			}
			tolerance := math.Pow(10, -float64(digits))
			if diff := math.Abs(parsed - v); diff > tolerance {
				t.Errorf("FormatFloat(%v, %d) = %q, round-trip error %g > %g",
					v, digits, got, diff, tolerance)
			}
		}
	}
}

func TestFormatFloat_LargeMagnitude(t *testing.T) {
	// Fixed-point even where %g would switch to scientific notation.
	got := FormatFloat(123456789.0, 2)
	if got != "123456789.00" {
		t.Errorf("FormatFloat = %q, want %q", got, "123456789.00")
	}
}

func TestConvertValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"2450.0000000", 2450.0},
		{"-10.176", -10.176},
		{"0", 0.0},
		{"WFT SynthNVP 55", "WFT SynthNVP 55"},
		{"", ""},
	}

	for _, tt := range tests {
		got := ConvertValue(tt.in)
		if got != tt.want {
			t.Errorf("ConvertValue(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}
