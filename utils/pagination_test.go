package utils

import "testing"

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 10, 3},
		{100, 25, 4},
		{101, 25, 5},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.limit); got != c.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", c.total, c.limit, got, c.want)
		}
	}
}

func TestNormalizePageLimit(t *testing.T) {
	page, limit := NormalizePageLimit(0, 0)
	if page != 1 || limit != 10 {
		t.Errorf("expected defaults 1/10, got %d/%d", page, limit)
	}

	page, limit = NormalizePageLimit(-3, -1)
	if page != 1 || limit != 10 {
		t.Errorf("expected defaults for negatives, got %d/%d", page, limit)
	}

	page, limit = NormalizePageLimit(4, 25)
	if page != 4 || limit != 25 {
		t.Errorf("expected passthrough 4/25, got %d/%d", page, limit)
	}
}
