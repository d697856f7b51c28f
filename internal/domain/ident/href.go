package ident

import (
	"fmt"
	"time"
)

// HrefBuilder composes resource URIs under a deployment wide prefix. Every
// href emitted by the mappers flows through here so the prefix and path
// shapes stay in one place.
type HrefBuilder struct {
	Prefix string
}

func NewHrefBuilder(prefix string) HrefBuilder {
	return HrefBuilder{Prefix: prefix}
}

func (h HrefBuilder) join(path string) string {
	return h.Prefix + path
}

func (h HrefBuilder) Time() string {
	return h.join("/tm")
}

func (h HrefBuilder) DeviceCapability() string {
	return h.join("/dcap")
}

func (h HrefBuilder) EndDeviceList() string {
	return h.join("/edev")
}

func (h HrefBuilder) EndDevice(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d", siteID))
}

func (h HrefBuilder) Registration(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/reg", siteID))
}

func (h HrefBuilder) ConnectionPoint(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/cp", siteID))
}

func (h HrefBuilder) DerList(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/der", siteID))
}

func (h HrefBuilder) Der(siteID, derID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/der/%d", siteID, derID))
}

func (h HrefBuilder) DerAvailability(siteID, derID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/der/%d/dera", siteID, derID))
}

func (h HrefBuilder) DerCapability(siteID, derID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/der/%d/dercap", siteID, derID))
}

func (h HrefBuilder) DerStatus(siteID, derID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/der/%d/ders", siteID, derID))
}

func (h HrefBuilder) DerSettings(siteID, derID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/der/%d/derg", siteID, derID))
}

func (h HrefBuilder) DerProgramList(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/derp", siteID))
}

func (h HrefBuilder) DerProgram(siteID, groupID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/derp/%d", siteID, groupID))
}

func (h HrefBuilder) DerControlList(siteID, groupID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/derp/%d/derc", siteID, groupID))
}

func (h HrefBuilder) DerControl(siteID, groupID, doeID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/derp/%d/derc/%d", siteID, groupID, doeID))
}

func (h HrefBuilder) ActiveDerControlList(siteID, groupID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/derp/%d/actderc", siteID, groupID))
}

func (h HrefBuilder) DefaultDerControl(siteID, groupID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/derp/%d/dderc", siteID, groupID))
}

// DoeDerControlList is the pre multi-group alias kept for subscription
// parsing: "doe" in place of a concrete group id.
func (h HrefBuilder) DoeDerControlList(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/derp/doe/derc", siteID))
}

func (h HrefBuilder) FunctionSetAssignmentsList(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/fsa", siteID))
}

func (h HrefBuilder) FunctionSetAssignments(siteID, fsaID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/fsa/%d", siteID, fsaID))
}

func (h HrefBuilder) TariffProfileList() string {
	return h.join("/tp")
}

func (h HrefBuilder) TariffProfileUnscoped(tariffID uint64) string {
	return h.join(fmt.Sprintf("/tp/%d", tariffID))
}

func (h HrefBuilder) SiteTariffProfileList(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/tp", siteID))
}

func (h HrefBuilder) TariffProfile(siteID, tariffID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/tp/%d", siteID, tariffID))
}

func (h HrefBuilder) RateComponentList(siteID, tariffID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/tp/%d/rc", siteID, tariffID))
}

func (h HrefBuilder) RateComponent(siteID, tariffID uint64, day time.Time, prt int) string {
	return h.join(fmt.Sprintf("/edev/%d/tp/%d/rc/%s/%d", siteID, tariffID, day.Format("2006-01-02"), prt))
}

func (h HrefBuilder) TimeTariffIntervalList(siteID, tariffID uint64, day time.Time, prt int) string {
	return h.join(fmt.Sprintf("/edev/%d/tp/%d/rc/%s/%d/tti", siteID, tariffID, day.Format("2006-01-02"), prt))
}

func (h HrefBuilder) TimeTariffInterval(siteID, tariffID uint64, day time.Time, prt int, timeOfDay time.Time) string {
	return h.join(fmt.Sprintf("/edev/%d/tp/%d/rc/%s/%d/tti/%s",
		siteID, tariffID, day.Format("2006-01-02"), prt, timeOfDay.Format("15:04")))
}

// ConsumptionTariffIntervalList embeds the scaled integer price so the
// single element interval list is addressable without a database lookup.
func (h HrefBuilder) ConsumptionTariffIntervalList(siteID, tariffID uint64, day time.Time, prt int, timeOfDay time.Time, price int64) string {
	return h.join(fmt.Sprintf("/edev/%d/tp/%d/rc/%s/%d/tti/%s/cti/%d",
		siteID, tariffID, day.Format("2006-01-02"), prt, timeOfDay.Format("15:04"), price))
}

func (h HrefBuilder) ConsumptionTariffInterval(siteID, tariffID uint64, day time.Time, prt int, timeOfDay time.Time, price int64) string {
	return h.join(fmt.Sprintf("/edev/%d/tp/%d/rc/%s/%d/tti/%s/cti/%d/1",
		siteID, tariffID, day.Format("2006-01-02"), prt, timeOfDay.Format("15:04"), price))
}

func (h HrefBuilder) SubscriptionList(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/sub", siteID))
}

func (h HrefBuilder) Subscription(siteID, subID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/sub/%d", siteID, subID))
}

func (h HrefBuilder) MirrorUsagePointList() string {
	return h.join("/mup")
}

func (h HrefBuilder) MirrorUsagePoint(mupID uint64) string {
	return h.join(fmt.Sprintf("/mup/%d", mupID))
}

func (h HrefBuilder) UsagePointList() string {
	return h.join("/upt")
}

func (h HrefBuilder) UsagePoint(siteID uint64) string {
	return h.join(fmt.Sprintf("/upt/%d", siteID))
}

func (h HrefBuilder) MeterReading(siteID, srtID uint64) string {
	return h.join(fmt.Sprintf("/upt/%d/mr/%d", siteID, srtID))
}

func (h HrefBuilder) ReadingList(siteID, srtID uint64) string {
	return h.join(fmt.Sprintf("/upt/%d/mr/%d/rs/all/r", siteID, srtID))
}

func (h HrefBuilder) ResponseSetList(siteID uint64) string {
	return h.join(fmt.Sprintf("/edev/%d/rsps", siteID))
}

func (h HrefBuilder) ResponseSet(siteID uint64, responseSetType string) string {
	return h.join(fmt.Sprintf("/edev/%d/rsps/%s", siteID, responseSetType))
}

func (h HrefBuilder) ResponseList(siteID uint64, responseSetType string) string {
	return h.join(fmt.Sprintf("/edev/%d/rsps/%s/rsp", siteID, responseSetType))
}
