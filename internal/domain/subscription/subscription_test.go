package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "enverge/internal/shared/errors"
)

func uintPtr(v uint64) *uint64 { return &v }
func intPtr(v int64) *int64    { return &v }

func TestParseSubscribedResource(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		href    string
		want    *ParsedResource
		wantErr bool
	}{
		{
			name: "site list",
			href: "/edev",
			want: &ParsedResource{Resource: ResourceSite},
		},
		{
			name: "single site",
			href: "/edev/42",
			want: &ParsedResource{Resource: ResourceSite, ScopedSiteID: uintPtr(42)},
		},
		{
			name: "site control list",
			href: "/edev/42/derp/doe/derc",
			want: &ParsedResource{Resource: ResourceDynamicOperatingEnvelope, ScopedSiteID: uintPtr(42)},
		},
		{
			name: "tariff rate list",
			href: "/edev/42/tp/7/rc",
			want: &ParsedResource{Resource: ResourceTariffGeneratedRate, ScopedSiteID: uintPtr(42), ResourceID: uintPtr(7)},
		},
		{
			name: "reading list",
			href: "/upt/42/mr/9/rs/all/r",
			want: &ParsedResource{Resource: ResourceReading, ScopedSiteID: uintPtr(42), ResourceID: uintPtr(9)},
		},
		{
			name:   "href prefix stripped",
			prefix: "/api/v2",
			href:   "/api/v2/edev/42",
			want:   &ParsedResource{Resource: ResourceSite, ScopedSiteID: uintPtr(42)},
		},
		{
			name: "trailing slash tolerated",
			href: "/edev/42/",
			want: &ParsedResource{Resource: ResourceSite, ScopedSiteID: uintPtr(42)},
		},
		{
			name:    "numeric group id is not the doe alias",
			href:    "/edev/42/derp/1/derc",
			wantErr: true,
		},
		{
			name:    "non numeric site id",
			href:    "/edev/abc",
			wantErr: true,
		},
		{
			name:    "unknown shape",
			href:    "/edev/42/der",
			wantErr: true,
		},
		{
			name:    "empty href",
			href:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubscribedResource(tt.prefix, tt.href)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsBadRequestError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateNotificationHost(t *testing.T) {
	domains := []string{"ems.example.com", "backup.example.com"}

	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{name: "allowlisted host", uri: "https://ems.example.com/notify"},
		{name: "allowlisted host with port", uri: "https://ems.example.com:8443/notify"},
		{name: "case insensitive match", uri: "https://EMS.Example.COM/notify"},
		{name: "unlisted host", uri: "https://evil.example.org/notify", wantErr: true},
		{name: "no host", uri: "/notify", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNotificationHost(tt.uri, domains)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntitiesServiced(t *testing.T) {
	candidates := []Candidate{
		{Entity: "a", SiteID: 1, FilterID: 10},
		{Entity: "b", SiteID: 2, FilterID: 10},
		{Entity: "c", SiteID: 1, FilterID: 20},
	}

	t.Run("wrong resource family matches nothing", func(t *testing.T) {
		sub := Subscription{Resource: ResourceSite}
		assert.Nil(t, EntitiesServiced(sub, ResourceTariffGeneratedRate, candidates))
	})

	t.Run("unscoped subscription matches all", func(t *testing.T) {
		sub := Subscription{Resource: ResourceSite}
		assert.Len(t, EntitiesServiced(sub, ResourceSite, candidates), 3)
	})

	t.Run("site scoping filters", func(t *testing.T) {
		sub := Subscription{Resource: ResourceSite, ScopedSiteID: uintPtr(1)}
		got := EntitiesServiced(sub, ResourceSite, candidates)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Entity)
		assert.Equal(t, "c", got[1].Entity)
	})

	t.Run("resource id filters", func(t *testing.T) {
		sub := Subscription{Resource: ResourceSite, ResourceID: uintPtr(20)}
		got := EntitiesServiced(sub, ResourceSite, candidates)
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].Entity)
	})
}

func TestEntitiesServicedReadingCondition(t *testing.T) {
	cond := &Condition{Attribute: ConditionReadingValue, Lower: intPtr(-100), Upper: intPtr(100)}
	sub := Subscription{Resource: ResourceReading, Condition: cond}

	candidates := []Candidate{
		{Entity: "in-band", ReadingValue: intPtr(50)},
		{Entity: "lower-edge", ReadingValue: intPtr(-100)},
		{Entity: "below", ReadingValue: intPtr(-101)},
		{Entity: "above", ReadingValue: intPtr(101)},
		{Entity: "no-value"},
	}

	got := EntitiesServiced(sub, ResourceReading, candidates)
	require.Len(t, got, 2)
	assert.Equal(t, "below", got[0].Entity)
	assert.Equal(t, "above", got[1].Entity)
}

func TestEntitiesServicedHalfOpenCondition(t *testing.T) {
	t.Run("lower bound only", func(t *testing.T) {
		cond := &Condition{Attribute: ConditionReadingValue, Lower: intPtr(0)}
		sub := Subscription{Resource: ResourceReading, Condition: cond}
		got := EntitiesServiced(sub, ResourceReading, []Candidate{
			{Entity: "neg", ReadingValue: intPtr(-1)},
			{Entity: "pos", ReadingValue: intPtr(1)},
		})
		require.Len(t, got, 1)
		assert.Equal(t, "neg", got[0].Entity)
	})

	t.Run("no condition passes everything with a value", func(t *testing.T) {
		sub := Subscription{Resource: ResourceReading}
		got := EntitiesServiced(sub, ResourceReading, []Candidate{
			{Entity: "x", ReadingValue: intPtr(0)},
			{Entity: "y"},
		})
		assert.Len(t, got, 2)
	})
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, 1, ClampPageSize(0))
	assert.Equal(t, 1, ClampPageSize(-5))
	assert.Equal(t, 10, ClampPageSize(10))
	assert.Equal(t, 100, ClampPageSize(100))
	assert.Equal(t, 100, ClampPageSize(5000))
}

func TestPages(t *testing.T) {
	candidates := make([]Candidate, 5)
	for i := range candidates {
		candidates[i] = Candidate{Entity: i}
	}

	t.Run("empty input yields no pages", func(t *testing.T) {
		assert.Nil(t, Pages(ResourceSite, nil, 10))
	})

	t.Run("list resource pages by entity limit", func(t *testing.T) {
		pages := Pages(ResourceSite, candidates, 2)
		require.Len(t, pages, 3)
		assert.Len(t, pages[0], 2)
		assert.Len(t, pages[1], 2)
		assert.Len(t, pages[2], 1)
	})

	t.Run("non list resource pages one at a time", func(t *testing.T) {
		pages := Pages(ResourceSiteDERStatus, candidates, 50)
		require.Len(t, pages, 5)
		for _, p := range pages {
			assert.Len(t, p, 1)
		}
	})

	t.Run("single page when limit covers all", func(t *testing.T) {
		pages := Pages(ResourceSite, candidates, 10)
		require.Len(t, pages, 1)
		assert.Len(t, pages[0], 5)
	})
}

func TestIsNonListResource(t *testing.T) {
	assert.True(t, IsNonListResource(ResourceSiteDERAvailability))
	assert.True(t, IsNonListResource(ResourceSiteDERRating))
	assert.True(t, IsNonListResource(ResourceSiteDERSetting))
	assert.True(t, IsNonListResource(ResourceSiteDERStatus))
	assert.True(t, IsNonListResource(ResourceDefaultSiteControl))
	assert.False(t, IsNonListResource(ResourceSite))
	assert.False(t, IsNonListResource(ResourceReading))
}
