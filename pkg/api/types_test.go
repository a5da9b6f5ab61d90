package api

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestListingMarshalEmptyArrays(t *testing.T) {
	l := Listing{
		Marketplace:     "meesho",
		MarketplaceName: "Meesho",
		Title:           "Trail Bottle",
		Description:     "Good bottle.",
	}

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"bullet_points":[]`) {
		t.Errorf("bullet_points should serialize as empty array: %s", s)
	}
	if !strings.Contains(s, `"keywords":[]`) {
		t.Errorf("keywords should serialize as empty array: %s", s)
	}
	if strings.Contains(s, `"specifications"`) {
		t.Errorf("empty specifications should be omitted: %s", s)
	}
}

func TestListingRoundTrip(t *testing.T) {
	in := Listing{
		Marketplace:     "amazon_in",
		MarketplaceName: "Amazon India",
		Title:           "Acme Trail Bottle 750 - insulated, leakproof",
		Description:     "**Acme Trail Bottle 750**",
		BulletPoints:    []string{"insulated", "leakproof"},
		Keywords:        []string{"acme", "bottle"},
		Specifications:  map[string]string{"Capacity": "750ml"},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Listing
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.Marketplace != in.Marketplace || out.Title != in.Title {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if len(out.BulletPoints) != 2 || out.BulletPoints[1] != "leakproof" {
		t.Errorf("bullet points lost: %v", out.BulletPoints)
	}
	if out.Specifications["Capacity"] != "750ml" {
		t.Errorf("specifications lost: %v", out.Specifications)
	}
}

func TestDraftResetResults(t *testing.T) {
	now := int64(1700000000)
	d := Draft{
		ID:     NewDraftID(),
		Object: "draft",
		Step:   StepResults,
		Listings: map[string]*Listing{
			"etsy": {Marketplace: "etsy", Title: "t"},
		},
		Failures:    []GenerationFailure{{Marketplace: "meesho", Message: "price required"}},
		GeneratedAt: &now,
	}

	d.ResetResults()

	if d.Listings != nil || d.Failures != nil || d.GeneratedAt != nil {
		t.Errorf("ResetResults left generation output behind: %+v", d)
	}
}
