package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enverge/internal/domain/envelope"
	"enverge/internal/domain/ident"
	"enverge/internal/interfaces/dto/sep2"
)

func testCtx(now time.Time) Ctx {
	return Ctx{
		Hrefs: ident.NewHrefBuilder(""),
		PEN:   1234,
		Now:   now,
		Opts:  RuntimeOptions{SiteControlPow10: 0, DerlPollRate: 60},
	}
}

func TestDoeEventStatus(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	deleted := now.Add(-time.Minute)

	tests := []struct {
		name       string
		rec        envelope.DoeRecord
		wantStatus int32
	}{
		{
			name: "future window is scheduled",
			rec: envelope.DoeRecord{
				StartTime: now.Add(time.Hour),
				EndTime:   now.Add(2 * time.Hour),
			},
			wantStatus: eventStatusScheduled,
		},
		{
			name: "containing window is active",
			rec: envelope.DoeRecord{
				StartTime: now.Add(-time.Hour),
				EndTime:   now.Add(time.Hour),
			},
			wantStatus: eventStatusActive,
		},
		{
			name: "window starting exactly now is active",
			rec: envelope.DoeRecord{
				StartTime: now,
				EndTime:   now.Add(time.Hour),
			},
			wantStatus: eventStatusActive,
		},
		{
			name: "elapsed window falls back to scheduled",
			rec: envelope.DoeRecord{
				StartTime: now.Add(-2 * time.Hour),
				EndTime:   now.Add(-time.Hour),
			},
			wantStatus: eventStatusScheduled,
		},
		{
			name: "superseded wins over active window",
			rec: envelope.DoeRecord{
				StartTime:  now.Add(-time.Hour),
				EndTime:    now.Add(time.Hour),
				Superseded: true,
			},
			wantStatus: eventStatusSuperseded,
		},
		{
			name: "archived cancellation wins over everything",
			rec: envelope.DoeRecord{
				Origin:      envelope.OriginArchive,
				StartTime:   now.Add(-time.Hour),
				EndTime:     now.Add(time.Hour),
				Superseded:  true,
				DeletedTime: &deleted,
			},
			wantStatus: eventStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := doeEventStatus(testCtx(now), tt.rec)
			assert.Equal(t, tt.wantStatus, status.CurrentStatus)
			if tt.wantStatus == eventStatusSuperseded {
				assert.NotNil(t, status.PotentiallySupersededTime)
			}
		})
	}
}

func TestToDerControl(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	exportLimit := int64(5000)
	setPoint := int64(80)

	rec := envelope.DoeRecord{
		ID:                 9,
		SiteControlGroupID: 1,
		SiteID:             5,
		StartTime:          now.Add(time.Hour),
		EndTime:            now.Add(2 * time.Hour),
		DurationSeconds:    3600,
		ExportLimitWatts:   &exportLimit,
		SetPointPercentage: &setPoint,
		CreatedTime:        now,
		ChangedTime:        now,
	}

	ctl := ToDerControl(testCtx(now), 5, rec)

	assert.Equal(t, "/edev/5/derp/1/derc/9", ctl.Href)
	assert.Equal(t, "/edev/5/rsps/site-control/rsp", ctl.ReplyTo)
	assert.Equal(t, "03", ctl.ResponseRequired)
	assert.Equal(t, ident.DoeMrid(9, 1234).String(), ctl.MRID)
	assert.Equal(t, int32(3600), ctl.Interval.Duration)
	assert.Equal(t, sep2.TimeType(now.Add(time.Hour).Unix()), ctl.Interval.Start)

	require.NotNil(t, ctl.DERControlBase.OpModExpLimW)
	assert.Equal(t, int64(5000), ctl.DERControlBase.OpModExpLimW.Value)
	assert.Equal(t, int32(0), ctl.DERControlBase.OpModExpLimW.Multiplier)
	assert.Nil(t, ctl.DERControlBase.OpModImpLimW)

	require.NotNil(t, ctl.DERControlBase.OpModFixedW)
	assert.Equal(t, sep2.SignedPercent(80), *ctl.DERControlBase.OpModFixedW)
}

func TestToDerControlListStripsItemNamespaces(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	recs := []envelope.DoeRecord{
		{ID: 1, SiteControlGroupID: 1, SiteID: 5, StartTime: now, EndTime: now.Add(time.Hour), DurationSeconds: 3600, CreatedTime: now, ChangedTime: now},
	}

	list := ToDerControlList(testCtx(now), 5, 1, recs, 7)

	assert.Equal(t, sep2.NamespaceSep2, list.Xmlns)
	assert.Equal(t, int32(7), list.All)
	assert.Equal(t, int32(1), list.Results)
	require.Len(t, list.DERControls, 1)
	assert.Empty(t, list.DERControls[0].Xmlns)
	require.NotNil(t, list.PollRate)
	assert.Equal(t, int32(60), *list.PollRate)
}

func TestScaleWatts(t *testing.T) {
	tests := []struct {
		name      string
		watts     int64
		pow10     int32
		wantValue int64
	}{
		{"identity", 12345, 0, 12345},
		{"positive multiplier divides", 12345, 2, 123},
		{"negative multiplier multiplies", 12, -2, 1200},
		{"negative quantity", -5000, 1, -500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scaleWatts(tt.watts, tt.pow10)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.pow10, got.Multiplier)
		})
	}
}
