package contenthash

import "testing"

func TestOfIsOrderIndependent(t *testing.T) {
	a := Of("x", "y", "z")
	b := Of("z", "x", "y")
	if a != b {
		t.Fatalf("Of should be order-independent: %v != %v", a, b)
	}
}

func TestOfOrderedIsOrderSensitive(t *testing.T) {
	a := OfOrdered("x", "y")
	b := OfOrdered("y", "x")
	if a == b {
		t.Fatal("OfOrdered should be sensitive to argument order")
	}
}

func TestBuildIdentityIgnoresPatchAndFlagOrder(t *testing.T) {
	a := BuildIdentity("abc123", []string{"p1", "p2"}, []string{"-DA", "-DB"})
	b := BuildIdentity("abc123", []string{"p2", "p1"}, []string{"-DB", "-DA"})
	if a != b {
		t.Fatalf("BuildIdentity should ignore patch/flag ordering: %v != %v", a, b)
	}
}

func TestBuildIdentityDiffersOnCommit(t *testing.T) {
	a := BuildIdentity("abc123", nil, nil)
	b := BuildIdentity("def456", nil, nil)
	if a == b {
		t.Fatal("BuildIdentity should differ when the commit differs")
	}
}

func TestStreamSeedIsDeterministic(t *testing.T) {
	a := StreamSeed(42, "activity_start_time", "user_001")
	b := StreamSeed(42, "activity_start_time", "user_001")
	if a != b {
		t.Fatalf("StreamSeed should be deterministic for identical inputs: %v != %v", a, b)
	}
}

func TestStreamSeedDiffersPerAgent(t *testing.T) {
	a := StreamSeed(42, "activity_start_time", "user_001")
	b := StreamSeed(42, "activity_start_time", "user_002")
	if a == b {
		t.Fatal("StreamSeed should differ across agent ids")
	}
}

func TestStreamSeedDiffersPerScenarioSeed(t *testing.T) {
	a := StreamSeed(1, "activity_start_time", "user_001")
	b := StreamSeed(2, "activity_start_time", "user_001")
	if a == b {
		t.Fatal("StreamSeed should differ across scenario seeds")
	}
}
