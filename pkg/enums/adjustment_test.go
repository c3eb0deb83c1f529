package enums

import "testing"

func TestParseAdjustmentMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    AdjustmentMode
		wantErr bool
	}{
		{raw: "fixed", want: AdjustmentModeFixed},
		{raw: " Percentage ", want: AdjustmentModePercentage},
		{raw: "dynamic", want: AdjustmentModePercentage},
		{raw: "compound", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAdjustmentMode(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %s got %s", tt.raw, tt.want, got)
		}
	}
}

func TestParseAdjustmentDirection(t *testing.T) {
	if got, err := ParseAdjustmentDirection("DECREASE"); err != nil || got != AdjustmentDirectionDecrease {
		t.Fatalf("expected decrease, got %s (%v)", got, err)
	}
	if _, err := ParseAdjustmentDirection("sideways"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
	if AdjustmentDirection("").IsValid() {
		t.Fatal("empty direction should be invalid")
	}
}

func TestBeverageCategoriesCarrySegments(t *testing.T) {
	for _, category := range BeverageCategories() {
		if category.Label() == "" {
			t.Fatalf("category %s missing label", category)
		}
		if len(category.Segments()) == 0 {
			t.Fatalf("category %s missing segments", category)
		}
	}
	if got := BeverageCategoryLiquor.Label(); got != "Liquor & Spirits" {
		t.Fatalf("unexpected liquor label %q", got)
	}
}
