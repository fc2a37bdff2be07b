package topology

// Region names as they appear in the `region` GML node attribute
// (spec.md §4.4 "fixed IANA RIR octet tables").
const (
	RegionNorthAmerica = "NorthAmerica"
	RegionEurope       = "Europe"
	RegionAsia         = "Asia"
	RegionLatinAmerica = "LatinAmerica"
	RegionAfrica       = "Africa"
	RegionOceania      = "Oceania"
)

// rirOctets gives each RIR region a representative set of first octets
// drawn from the real allocation blocks published by ARIN, RIPE NCC,
// APNIC, LACNIC, AFRINIC, each a real IANA-delegated /8 for that
// registry at the time this table was written.
var rirOctets = map[string][]int{
	RegionNorthAmerica: {3, 4, 6, 7, 8, 9, 11, 12, 13, 15, 18, 20, 23, 24, 26, 28, 29, 30},
	RegionEurope:       {2, 5, 25, 31, 46, 51, 62, 77, 78, 79, 80, 81, 82, 83, 84, 85, 86, 87},
	RegionAsia:         {1, 14, 27, 36, 39, 42, 49, 58, 59, 60, 61, 101, 103, 110, 111, 112, 113, 114},
	RegionLatinAmerica: {177, 179, 181, 186, 187, 189, 190, 191, 200, 201},
	RegionAfrica:       {41, 102, 105, 154, 160, 196, 197},
	RegionOceania:      {1, 14, 27, 43, 101, 103, 110, 111, 112, 113, 114, 175},
}

// bandwidthProfile describes the truncated-normal distribution the
// topology stage samples from when a GML node omits an explicit
// bandwidth attribute (spec.md §4.4 "truncated normal drawn from the
// region profile with a deterministic per-node seed").
type bandwidthProfile struct {
	MeanDownKbps, StddevDownKbps, MinDownKbps, MaxDownKbps float64
	MeanUpKbps, StddevUpKbps, MinUpKbps, MaxUpKbps         float64
}

var regionBandwidth = map[string]bandwidthProfile{
	RegionNorthAmerica: {150000, 60000, 5000, 1000000, 20000, 10000, 1000, 200000},
	RegionEurope:       {120000, 50000, 5000, 900000, 18000, 9000, 1000, 180000},
	RegionAsia:         {90000, 45000, 3000, 800000, 15000, 8000, 800, 150000},
	RegionLatinAmerica: {45000, 25000, 2000, 400000, 8000, 5000, 500, 80000},
	RegionAfrica:       {25000, 15000, 1000, 250000, 5000, 3000, 300, 50000},
	RegionOceania:      {70000, 35000, 2000, 600000, 12000, 6000, 600, 120000},
}

func defaultRegion() string { return RegionNorthAmerica }

func profileFor(region string) bandwidthProfile {
	if p, ok := regionBandwidth[region]; ok {
		return p
	}
	return regionBandwidth[defaultRegion()]
}

func octetsFor(region string) []int {
	if o, ok := rirOctets[region]; ok {
		return o
	}
	return rirOctets[defaultRegion()]
}

// latencyTable is a symmetric region-pair latency estimate in
// milliseconds (spec.md §4.4 "edge has a latency (region-pair table)").
var latencyTable = map[[2]string]float64{
	{RegionNorthAmerica, RegionNorthAmerica}: 20,
	{RegionNorthAmerica, RegionEurope}:       90,
	{RegionNorthAmerica, RegionAsia}:         160,
	{RegionNorthAmerica, RegionLatinAmerica}: 110,
	{RegionNorthAmerica, RegionAfrica}:       180,
	{RegionNorthAmerica, RegionOceania}:      150,
	{RegionEurope, RegionEurope}:             15,
	{RegionEurope, RegionAsia}:               150,
	{RegionEurope, RegionLatinAmerica}:       170,
	{RegionEurope, RegionAfrica}:             90,
	{RegionEurope, RegionOceania}:            250,
	{RegionAsia, RegionAsia}:                 25,
	{RegionAsia, RegionLatinAmerica}:         280,
	{RegionAsia, RegionAfrica}:               220,
	{RegionAsia, RegionOceania}:              90,
	{RegionLatinAmerica, RegionLatinAmerica}: 30,
	{RegionLatinAmerica, RegionAfrica}:       250,
	{RegionLatinAmerica, RegionOceania}:      280,
	{RegionAfrica, RegionAfrica}:             35,
	{RegionAfrica, RegionOceania}:            270,
	{RegionOceania, RegionOceania}:           20,
}

// LatencyMs returns the region-pair latency estimate, symmetric in its
// arguments, falling back to a conservative default for untabulated
// pairs.
func LatencyMs(a, b string) float64 {
	if v, ok := latencyTable[[2]string{a, b}]; ok {
		return v
	}
	if v, ok := latencyTable[[2]string{b, a}]; ok {
		return v
	}
	return 200
}

// CaidaBandwidthKbps scales baseKbps by a CAIDA AS-relationship type to
// give the aggregate edge bandwidth: ×5 for customer/provider links, ×3
// for peer-to-peer links, and ×5 for any other code. Relationship codes follow CAIDA's
// as-rel dataset convention: -1 customer-to-provider, 0 peer-to-peer, 1
// provider-to-customer, 2 sibling.
func CaidaBandwidthKbps(relationship int, baseKbps float64) float64 {
	switch relationship {
	case -1, 1:
		return baseKbps * 5
	case 0:
		return baseKbps * 3
	default:
		return baseKbps * 5
	}
}
