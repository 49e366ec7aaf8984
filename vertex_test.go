package atlasgen

import (
	"testing"

	"github.com/sc-workshop/AtlasGenerator/geom"
)

func TestTransformPointIdentity(t *testing.T) {
	tr := Transformation{}
	got := tr.TransformPoint(geom.Point{X: 3, Y: 4})
	if got.X != 3 || got.Y != 4 {
		t.Fatalf("identity transform mismatch: got %+v", got)
	}
}

func TestTransformPointTranslation(t *testing.T) {
	tr := Transformation{Translation: geom.Point{X: 10, Y: -5}}
	got := tr.TransformPoint(geom.Point{X: 1, Y: 1})
	if got.X != 11 || got.Y != -4 {
		t.Fatalf("translation mismatch: got %+v", got)
	}
}

func TestTransformPointQuarterRotation(t *testing.T) {
	tr := Transformation{Rotation: rotationRadians(90)}
	got := tr.TransformPoint(geom.Point{X: 5, Y: 0})
	if got.X != 0 || got.Y != 5 {
		t.Fatalf("90 degree rotation mismatch: got %+v", got)
	}
}

func TestRotationRadiansWrapsModulo(t *testing.T) {
	got := rotationRadians(450)
	want := rotationRadians(90)
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected 450 degrees to reduce to 90 degrees, got %v want %v", got, want)
	}
}
