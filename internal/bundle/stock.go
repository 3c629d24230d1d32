package bundle

// Requirement is the number of units of one component variation consumed by a single bundle.
type Requirement struct {
	VariationID string
	Quantity    int32
}

// OnHand maps location id -> variation id -> units in stock. A missing entry means zero.
type OnHand map[string]map[string]int32

// LocationRef names a location in stock results.
type LocationRef struct {
	ID   string
	Name string
}

// LocationStock is the number of complete bundles buildable at one location.
type LocationStock struct {
	LocationID   string `json:"locationId"`
	LocationName string `json:"locationName"`
	Available    int64  `json:"available"`
}

// Stock is the buildable quantity of a bundle, per location and in total.
type Stock struct {
	PerLocation []LocationStock `json:"perLocation"`
	Total       int64           `json:"total"`
}

// Buildable returns min over components of floor(level/quantity). No components means
// nothing can be assembled.
func Buildable(reqs []Requirement, levels map[string]int32) int64 {
	if len(reqs) == 0 {
		return 0
	}
	best := int64(-1)
	for _, req := range reqs {
		if req.Quantity < 1 {
			return 0
		}
		have := int64(levels[req.VariationID])
		if have < 0 {
			have = 0
		}
		n := have / int64(req.Quantity)
		if best < 0 || n < best {
			best = n
		}
	}
	return best
}

// ComputeStock evaluates Buildable at every location and sums the results. Components
// cannot be pooled across locations, so the total is a sum of per-location floors.
func ComputeStock(reqs []Requirement, onHand OnHand, locations []LocationRef) Stock {
	out := Stock{PerLocation: make([]LocationStock, 0, len(locations))}
	for _, loc := range locations {
		n := Buildable(reqs, onHand[loc.ID])
		out.PerLocation = append(out.PerLocation, LocationStock{
			LocationID:   loc.ID,
			LocationName: loc.Name,
			Available:    n,
		})
		out.Total += n
	}
	return out
}
