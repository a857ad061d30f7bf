package match

import (
	"testing"
	"time"

	"imagedups/internal/models"
)

func TestSelectKeepAndRemove(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		images       []*models.ImageRecord
		expectedKeep string
	}{
		{
			name: "keep highest score",
			images: []*models.ImageRecord{
				{Path: "low.jpg", Score: 1.0, FileSize: 100, ModTime: now},
				{Path: "high.jpg", Score: 10.0, FileSize: 100, ModTime: now},
			},
			expectedKeep: "high.jpg",
		},
		{
			name: "tie score, keep larger file",
			images: []*models.ImageRecord{
				{Path: "small.jpg", Score: 5.0, FileSize: 100, ModTime: now},
				{Path: "large.jpg", Score: 5.0, FileSize: 1000, ModTime: now},
			},
			expectedKeep: "large.jpg",
		},
		{
			name: "tie score and size, keep newer",
			images: []*models.ImageRecord{
				{Path: "old.jpg", Score: 5.0, FileSize: 100, ModTime: now.Add(-time.Hour)},
				{Path: "new.jpg", Score: 5.0, FileSize: 100, ModTime: now},
			},
			expectedKeep: "new.jpg",
		},
		{
			name: "full tie, keep lexicographically first path",
			images: []*models.ImageRecord{
				{Path: "b.jpg", Score: 5.0, FileSize: 100, ModTime: now},
				{Path: "a.jpg", Score: 5.0, FileSize: 100, ModTime: now},
			},
			expectedKeep: "a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := &models.Group{ID: 1, Images: tt.images}
			selectKeepAndRemove(group)

			if group.Keep == nil || group.Keep.Path != tt.expectedKeep {
				t.Errorf("expected to keep %s, got %v", tt.expectedKeep, group.Keep)
			}
			if len(group.Remove) != len(tt.images)-1 {
				t.Errorf("expected %d images to remove, got %d", len(tt.images)-1, len(group.Remove))
			}
			for _, img := range tt.images {
				if img.GroupID != 1 {
					t.Errorf("%s: group ID not assigned", img.Path)
				}
			}
		})
	}
}

func TestBuildGroupsDropsSingletons(t *testing.T) {
	records := []*models.ImageRecord{
		{Path: "a.jpg"},
		{Path: "b.jpg"},
		{Path: "c.jpg"},
	}
	uf := newUnionFind(3)
	uf.union(0, 2)

	groups := buildGroups(records, uf.find)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups[0].Images) != 2 {
		t.Errorf("expected 2 members, got %d", len(groups[0].Images))
	}
	for _, img := range groups[0].Images {
		if img.Path == "b.jpg" {
			t.Error("singleton b.jpg must not appear in any group")
		}
	}
}

func TestBuildGroupsMemberAndGroupOrder(t *testing.T) {
	records := []*models.ImageRecord{
		{Path: "0.jpg"},
		{Path: "1.jpg"},
		{Path: "2.jpg"},
		{Path: "3.jpg"},
		{Path: "4.jpg"},
	}
	uf := newUnionFind(5)
	// Union in an order unrelated to input order.
	uf.union(4, 1)
	uf.union(3, 2)

	groups := buildGroups(records, uf.find)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// Groups follow smallest member index, members follow input order.
	if groups[0].Images[0].Path != "1.jpg" || groups[0].Images[1].Path != "4.jpg" {
		t.Errorf("group 1 members out of order: %s, %s", groups[0].Images[0].Path, groups[0].Images[1].Path)
	}
	if groups[1].Images[0].Path != "2.jpg" || groups[1].Images[1].Path != "3.jpg" {
		t.Errorf("group 2 members out of order: %s, %s", groups[1].Images[0].Path, groups[1].Images[1].Path)
	}
	if groups[0].ID != 1 || groups[1].ID != 2 {
		t.Errorf("group IDs = %d, %d, want 1, 2", groups[0].ID, groups[1].ID)
	}
}
