package scene

import "testing"

func testSkeleton() *Skeleton {
	root := &Bone{Name: "Root", Deform: true}
	spine := root.AddChild(&Bone{Name: "Spine", Deform: true})
	spine.AddChild(&Bone{Name: "Head", Deform: true})
	root.AddChild(&Bone{Name: "ctrlIK"})
	return &Skeleton{Bones: []*Bone{root}}
}

func TestSkeletonWalkDepthFirst(t *testing.T) {
	var order []string
	testSkeleton().Walk(func(b *Bone) { order = append(order, b.Name) })
	want := []string{"Root", "Spine", "Head", "ctrlIK"}
	if len(order) != len(want) {
		t.Fatalf("visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("visited %v, want %v", order, want)
		}
	}
}

func TestSkeletonFindBone(t *testing.T) {
	sk := testSkeleton()
	b := sk.FindBone("Head")
	if b == nil {
		t.Fatal("FindBone(Head) = nil")
	}
	if b.Parent == nil || b.Parent.Name != "Spine" {
		t.Errorf("Head parent = %v, want Spine", b.Parent)
	}
	if sk.FindBone("Tail") != nil {
		t.Error("FindBone(Tail) found a bone that does not exist")
	}
}

func TestBoneIsControl(t *testing.T) {
	sk := testSkeleton()
	if sk.FindBone("Spine").IsControl() {
		t.Error("deform bone reported as control")
	}
	if !sk.FindBone("ctrlIK").IsControl() {
		t.Error("ctrl-prefixed bone not reported as control")
	}
	if !(&Bone{Name: "Helper"}).IsControl() {
		t.Error("non-deform bone not reported as control")
	}
}
