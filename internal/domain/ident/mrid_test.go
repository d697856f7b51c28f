package ident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMrid(t *testing.T) {
	tests := []struct {
		name     string
		mridType MridType
		idHi     uint64
		idLo     uint64
		pen      uint32
		wantErr  bool
	}{
		{
			name:     "doe mrid fits",
			mridType: MridTypeDynamicOperatingEnvelope,
			idLo:     42,
			pen:      37244,
		},
		{
			name:     "max id high bits accepted",
			mridType: MridTypeTariff,
			idHi:     idHiMask,
			idLo:     ^uint64(0),
			pen:      ^uint32(0),
		},
		{
			name:     "id high bits exceed 28 bit field",
			mridType: MridTypeTariff,
			idHi:     idHiMask + 1,
			wantErr:  true,
		},
		{
			name:     "mrid type exceeds 4 bit field",
			mridType: MridTypeResponseSet + 1,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := EncodeMrid(tt.mridType, tt.idHi, tt.idLo, tt.pen)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mridType, m.Type())
			assert.Equal(t, tt.idHi, m.IDHi())
			assert.Equal(t, tt.idLo, m.IDLo())
			assert.Equal(t, tt.pen, m.IanaPEN())
		})
	}
}

func TestMridString(t *testing.T) {
	m := DoeMrid(42, 37244)
	assert.Equal(t, "20000000000000000000002a0000917c", m.String())
}

func TestParseMrid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "lowercase", input: "20000000000000000000002a0000917c"},
		{name: "uppercase accepted", input: "20000000000000000000002A0000917C"},
		{name: "too short", input: "2000", wantErr: true},
		{name: "too long", input: "20000000000000000000002a0000917c00", wantErr: true},
		{name: "non hex", input: "20000000000000000000002a0000917g", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMrid(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, MridTypeDynamicOperatingEnvelope, m.Type())
			assert.Equal(t, uint64(42), DecodeDoeMrid(m))
			assert.Equal(t, uint32(37244), m.IanaPEN())
		})
	}
}

func TestValidatePEN(t *testing.T) {
	m := DoeMrid(1, 1234)
	assert.NoError(t, m.ValidatePEN(1234))
	assert.Error(t, m.ValidatePEN(5678))
}

func TestDerProgramMrid(t *testing.T) {
	m := DerProgramMrid(7, 1)
	assert.Equal(t, "1d0e0000000000000000000700000001", m.String())
	assert.Equal(t, MridTypeDerProgram, m.Type())
}

func TestFsaMrid(t *testing.T) {
	m := FsaMrid(3, 9, 1234)
	assert.Equal(t, MridTypeFunctionSetAssignment, m.Type())
	assert.Equal(t, uint64(3)<<32|9, m.IDLo())
	assert.Equal(t, uint32(1234), m.IanaPEN())
}

func TestRateComponentMrid(t *testing.T) {
	day := time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC)

	m, err := RateComponentMrid(1, 2, 1, day, 0)
	require.NoError(t, err)
	assert.Equal(t, MridTypeRateComponent, m.Type())
	// minutes since 2000-01-01T00:00Z occupy the low 26 id bits
	assert.Equal(t, uint64(1440), m.IDLo()&((1<<26)-1))
	// (prt-1) sits just above the minutes field
	assert.Equal(t, uint64(0), (m.IDLo()>>26)&0x3)

	m4, err := RateComponentMrid(1, 2, 4, day, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), (m4.IDLo()>>26)&0x3)

	_, err = RateComponentMrid(1, 2, 0, day, 0)
	assert.Error(t, err)
	_, err = RateComponentMrid(1, 2, 5, day, 0)
	assert.Error(t, err)

	// distinct tariffs and sites mint distinct mrids
	other, err := RateComponentMrid(2, 2, 1, day, 0)
	require.NoError(t, err)
	assert.NotEqual(t, m.String(), other.String())
}

func TestTimeTariffIntervalMrid(t *testing.T) {
	m, err := TimeTariffIntervalMrid(555, 2, 1234)
	require.NoError(t, err)
	assert.Equal(t, MridTypeTimeTariffInterval, m.Type())
	assert.Equal(t, uint64(555), m.IDLo())
	assert.Equal(t, uint64(1)<<26, m.IDHi())

	_, err = TimeTariffIntervalMrid(555, 0, 1234)
	assert.Error(t, err)
}

func TestDefaultDoeMrid(t *testing.T) {
	m := DefaultDoeMrid(1234)
	assert.Equal(t, MridTypeDefaultDoe, m.Type())
	assert.Equal(t, uint64(defaultDoeID), m.IDLo())
	// parse back from rendered form
	parsed, err := ParseMrid(m.String())
	require.NoError(t, err)
	assert.Equal(t, m, parsed)
}
