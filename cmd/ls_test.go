package cmd

import (
	"testing"

	"cloudpull/internal/remote"
)

func TestBuildListing(t *testing.T) {
	entries := []remote.Entry{
		{Path: "gs://b/a.txt", Name: "a.txt", Kind: remote.KindFile, Size: 2048},
		{Path: "gs://b/backups/", Name: "backups", Kind: remote.KindFolder, Size: -1},
		{Path: "gs://b/c.bin", Name: "c.bin", Kind: remote.KindFile, Size: 0},
	}

	listing := buildListing("gs://b", "gs://b", entries)

	if listing.TotalFiles != 2 || listing.TotalFolders != 1 {
		t.Errorf("counts = %d files / %d folders, want 2/1", listing.TotalFiles, listing.TotalFolders)
	}
	if len(listing.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(listing.Entries))
	}
	if listing.Entries[0].SizeHuman != "2.0 KB" {
		t.Errorf("SizeHuman = %s, want 2.0 KB", listing.Entries[0].SizeHuman)
	}
	if listing.Entries[1].SizeHuman != "" {
		t.Errorf("unknown size rendered as %q, want empty", listing.Entries[1].SizeHuman)
	}
	if listing.Entries[2].SizeHuman != "0 B" {
		t.Errorf("zero size rendered as %q, want 0 B", listing.Entries[2].SizeHuman)
	}
	if listing.OperationTime == "" {
		t.Error("OperationTime not set")
	}
}

func TestBuildListingEmpty(t *testing.T) {
	listing := buildListing("gs://b", "gs://b/none", nil)
	if len(listing.Entries) != 0 || listing.TotalFiles != 0 || listing.TotalFolders != 0 {
		t.Errorf("empty listing = %+v, want zero entries", listing)
	}
}
