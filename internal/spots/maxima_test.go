package spots

import (
	"testing"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"
)

func allEligible(n int) []bool {
	e := make([]bool, n)
	for i := range e {
		e[i] = true
	}
	return e
}

func TestFindMaximaSinglePeak(t *testing.T) {
	data := []uint8{
		0, 0, 0,
		0, 200, 0,
		0, 0, 0,
	}
	got := findMaxima(data, 3, 3, allEligible(9), 10)
	if len(got) != 1 {
		t.Fatalf("found %d maxima, want 1", len(got))
	}
	if got[0] != (geometry.PointInt{X: 1, Y: 1}) {
		t.Errorf("maximum at %v, want (1,1)", got[0])
	}
}

func TestFindMaximaTwoSeparatedPeaks(t *testing.T) {
	// Two peaks separated by a deep valley: both survive.
	data := []uint8{
		200, 0, 0, 0, 180,
		0, 0, 0, 0, 0,
	}
	got := findMaxima(data, 5, 2, allEligible(10), 50)
	if len(got) != 2 {
		t.Fatalf("found %d maxima, want 2", len(got))
	}
	// Processing order is by descending intensity.
	if got[0] != (geometry.PointInt{X: 0, Y: 0}) || got[1] != (geometry.PointInt{X: 4, Y: 0}) {
		t.Errorf("maxima = %v, want [(0,0) (4,0)]", got)
	}
}

func TestFindMaximaShoulderSuppressed(t *testing.T) {
	// The 190 shoulder is within tolerance of the 200 peak across the 185
	// saddle, so only the taller peak fires.
	data := []uint8{200, 185, 190}
	got := findMaxima(data, 3, 1, allEligible(3), 20)
	if len(got) != 1 {
		t.Fatalf("found %d maxima, want 1", len(got))
	}
	if got[0] != (geometry.PointInt{X: 0, Y: 0}) {
		t.Errorf("maximum at %v, want (0,0)", got[0])
	}
}

func TestFindMaximaShoulderAboveTolerance(t *testing.T) {
	// With a deeper valley the second peak is prominent enough.
	data := []uint8{200, 100, 190}
	got := findMaxima(data, 3, 1, allEligible(3), 20)
	if len(got) != 2 {
		t.Fatalf("found %d maxima, want 2", len(got))
	}
}

func TestFindMaximaExactToleranceBoundary(t *testing.T) {
	// The second peak's prominence is exactly 180-160 = 20: the inclusive
	// comparison keeps it at tol=20 and suppresses it just above.
	data := []uint8{200, 160, 180}

	got := findMaxima(data, 3, 1, allEligible(3), 20)
	if len(got) != 2 {
		t.Fatalf("found %d maxima at exact-tolerance prominence, want 2", len(got))
	}

	got = findMaxima(data, 3, 1, allEligible(3), 21)
	if len(got) != 1 {
		t.Fatalf("found %d maxima just above tolerance, want 1", len(got))
	}
	if got[0] != (geometry.PointInt{X: 0, Y: 0}) {
		t.Errorf("surviving maximum at %v, want (0,0)", got[0])
	}
}

func TestFindMaximaFloodIntoClaimedTerritory(t *testing.T) {
	// The taller peak's flood stops short of the saddle, but the second
	// peak's wider flood crosses it into the claimed region and must be
	// suppressed there.
	data := []uint8{200, 160, 180, 160, 179}
	got := findMaxima(data, 5, 1, allEligible(5), 25)
	if len(got) != 1 {
		t.Fatalf("found %d maxima, want only the tallest peak", len(got))
	}
	if got[0] != (geometry.PointInt{X: 0, Y: 0}) {
		t.Errorf("maximum at %v, want (0,0)", got[0])
	}
}

func TestFindMaximaRespectsEligibility(t *testing.T) {
	data := []uint8{
		0, 0, 0,
		0, 200, 0,
		0, 0, 0,
	}
	eligible := make([]bool, 9) // everything masked out
	if got := findMaxima(data, 3, 3, eligible, 10); len(got) != 0 {
		t.Errorf("found %d maxima under empty mask, want 0", len(got))
	}
}

func TestFindMaximaPlateauFiresOnce(t *testing.T) {
	// A flat-topped peak yields exactly one maximum, at the first plateau
	// pixel in raster order.
	data := []uint8{
		0, 0, 0, 0,
		0, 150, 150, 0,
		0, 0, 0, 0,
	}
	got := findMaxima(data, 4, 3, allEligible(12), 10)
	if len(got) != 1 {
		t.Fatalf("found %d maxima on plateau, want 1", len(got))
	}
	if got[0] != (geometry.PointInt{X: 1, Y: 1}) {
		t.Errorf("plateau maximum at %v, want (1,1)", got[0])
	}
}

func TestFindMaximaDeterministic(t *testing.T) {
	data := []uint8{
		10, 0, 0, 0, 10,
		0, 0, 0, 0, 0,
		10, 0, 0, 0, 10,
	}
	first := findMaxima(data, 5, 3, allEligible(15), 5)
	for run := 0; run < 10; run++ {
		got := findMaxima(data, 5, 3, allEligible(15), 5)
		if len(got) != len(first) {
			t.Fatalf("run %d found %d maxima, first run found %d", run, len(got), len(first))
		}
		for i := range got {
			if got[i] != first[i] {
				t.Fatalf("run %d maxima %v differ from first run %v", run, got, first)
			}
		}
	}
}
