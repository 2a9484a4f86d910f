package ogc

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/edgeflare/ogcapi/pkg/fgb"
	"github.com/edgeflare/ogcapi/pkg/features"
)

// requestBaseURL derives the externally visible base URL from the Host and
// X-Forwarded-Proto headers. The scheme defaults to http.
func requestBaseURL(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func collectionLinks(base, id string) []Link {
	href := fmt.Sprintf("%s/collections/%s", base, url.PathEscape(id))
	return []Link{
		{Href: href, Rel: RelSelf, Type: MediaTypeJSON, Title: "this document"},
		{Href: href + "/items", Rel: RelItems, Type: MediaTypeGeoJSON, Title: "Items"},
	}
}

// itemsLinks builds the links of an items page. A next link is added only
// while rows remain beyond the current page, i.e. numberMatched > offset+limit.
// The check subtracts so that offset+limit never wraps.
func itemsLinks(base, id string, params features.Params, limit, numberMatched uint64) []Link {
	items := fmt.Sprintf("%s/collections/%s/items", base, url.PathEscape(id))
	offset := params.OffsetOrDefault()

	links := []Link{
		{Href: items, Rel: RelSelf, Type: MediaTypeGeoJSON, Title: "this document"},
		{Href: items + "?" + pageQuery(limit, offset, params.BBox, "fgb"), Rel: RelAlternate, Type: fgb.ContentType, Title: "this document as FlatGeobuf"},
	}

	if numberMatched > offset && numberMatched-offset > limit {
		links = append(links, Link{
			Href:  items + "?" + pageQuery(limit, offset+limit, params.BBox, ""),
			Rel:   RelNext,
			Type:  MediaTypeGeoJSON,
			Title: "next page",
		})
	}
	return links
}

// pageQuery renders limit, offset and bbox in that order, followed by f when set.
func pageQuery(limit, offset uint64, bbox features.BBox, format string) string {
	q := "limit=" + strconv.FormatUint(limit, 10) + "&offset=" + strconv.FormatUint(offset, 10)
	if len(bbox) > 0 {
		q += "&bbox=" + bbox.String()
	}
	if format != "" {
		q += "&f=" + format
	}
	return q
}
