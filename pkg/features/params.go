package features

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when a request does not specify one.
const DefaultLimit uint64 = 10

// BBox is an axis-aligned bounding box with 4 (2D) or 6 (3D) components in
// EPSG:4326: minx,miny[,minz],maxx,maxy[,maxz].
type BBox []float64

// Is2D reports whether the box has the four components used for spatial filtering.
func (b BBox) Is2D() bool { return len(b) == 4 }

// String renders the box the way it is accepted in the bbox query parameter.
func (b BBox) String() string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Params holds the query parameters of an items request. Nil pointers mean
// the parameter was not supplied.
type Params struct {
	Limit  *uint64
	Offset *uint64
	BBox   BBox
}

// LimitOr returns the requested limit or def.
func (p Params) LimitOr(def uint64) uint64 {
	if p.Limit == nil {
		return def
	}
	return *p.Limit
}

// LimitOrDefault returns the requested limit or DefaultLimit.
func (p Params) LimitOrDefault() uint64 { return p.LimitOr(DefaultLimit) }

// OffsetOrDefault returns the requested offset or 0.
func (p Params) OffsetOrDefault() uint64 {
	if p.Offset == nil {
		return 0
	}
	return *p.Offset
}

// SpatialFilter returns the box to filter by. 3D boxes are accepted by the
// parser but are not applied as a filter.
func (p Params) SpatialFilter() (BBox, bool) {
	if p.BBox.Is2D() {
		return p.BBox, true
	}
	return nil, false
}

// ForCount returns the variant of p used for the matched-count query: the
// limit is dropped while the offset stays in place as the key lower bound.
func (p Params) ForCount() Params {
	return Params{Offset: p.Offset, BBox: p.BBox}
}

// ParseParams parses limit, offset and bbox from a query string. bbox is
// either a single comma-separated value or a repeated parameter with one
// component per value.
func ParseParams(q url.Values) (Params, error) {
	var p Params

	if v := q.Get("limit"); v != "" {
		n, err := parseUint("limit", v)
		if err != nil {
			return Params{}, err
		}
		p.Limit = &n
	}

	if v := q.Get("offset"); v != "" {
		n, err := parseUint("offset", v)
		if err != nil {
			return Params{}, err
		}
		p.Offset = &n
	}

	if values, ok := q["bbox"]; ok && len(values) > 0 {
		bbox, err := ParseBBox(values)
		if err != nil {
			return Params{}, err
		}
		p.BBox = bbox
	}

	return p, nil
}

// ParseBBox parses bbox query values into a BBox with 4 or 6 components.
func ParseBBox(values []string) (BBox, error) {
	var parts []string
	if len(values) == 1 {
		parts = strings.Split(values[0], ",")
	} else {
		parts = values
	}

	bbox := make(BBox, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, BadRequest("invalid bbox format: %v", err)
		}
		bbox = append(bbox, f)
	}

	if len(bbox) != 4 && len(bbox) != 6 {
		return nil, BadRequest("bbox must have 4 or 6 components, got %d", len(bbox))
	}
	return bbox, nil
}

func parseUint(name, v string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, BadRequest("invalid %s %q: must be an unsigned integer", name, v)
	}
	return n, nil
}

// Uint64 returns a pointer to v.
func Uint64(v uint64) *uint64 { return &v }
