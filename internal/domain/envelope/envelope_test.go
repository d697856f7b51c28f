package envelope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSupersedes(t *testing.T) {
	tests := []struct {
		name       string
		oldPrimacy int32
		newPrimacy int32
		want       bool
	}{
		{"lower primacy replaces higher", 2, 1, true},
		{"equal primacy replaces", 1, 1, true},
		{"higher primacy does not replace lower", 1, 2, false},
		{"zero replaces everything", 5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Supersedes(tt.oldPrimacy, tt.newPrimacy))
		})
	}
}

func TestPrimacyOf(t *testing.T) {
	primacies := map[uint64]int32{1: 3, 2: 7}

	assert.Equal(t, int32(3), PrimacyOf(primacies, 1))
	assert.Equal(t, int32(7), PrimacyOf(primacies, 2))
	// unknown groups resolve to the most authoritative primacy
	assert.Equal(t, int32(0), PrimacyOf(primacies, 99))
	assert.Equal(t, int32(0), PrimacyOf(nil, 1))
}

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time {
		return time.Date(2024, time.June, 1, h, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name         string
		aStart, aEnd time.Time
		bStart, bEnd time.Time
		want         bool
	}{
		{"identical windows", at(10), at(12), at(10), at(12), true},
		{"partial overlap", at(10), at(12), at(11), at(13), true},
		{"contained window", at(10), at(14), at(11), at(12), true},
		{"adjacent windows do not overlap", at(10), at(12), at(12), at(14), false},
		{"disjoint windows", at(10), at(11), at(12), at(13), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestDoeRecordIsDeleted(t *testing.T) {
	now := time.Now().UTC()

	assert.False(t, DoeRecord{Origin: OriginLive}.IsDeleted())
	assert.False(t, DoeRecord{Origin: OriginArchive}.IsDeleted())
	assert.True(t, DoeRecord{Origin: OriginArchive, DeletedTime: &now}.IsDeleted())
}
