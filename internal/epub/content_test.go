package epub

import (
	"reflect"
	"testing"
)

func TestLoadContent(t *testing.T) {
	xhtml := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:xlink="http://www.w3.org/1999/xlink">
<head><title id="head-title">Chapter 1</title></head>
<body>
	<h1 id="ch1">Chapter 1</h1>
	<p>Before the picture.</p>
	<img src="../images/photo.jpg" alt="Sample photo"/>
	<div id="sec1"><img src="diagrams/chart.png" alt="Chart"/></div>
	<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100">
		<image xlink:href="../images/plate.png" width="100" height="100"/>
	</svg>
</body>
</html>`

	content, err := LoadContent("OEBPS/text/chapter1.xhtml", []byte(xhtml))
	if err != nil {
		t.Fatalf("LoadContent() error = %v", err)
	}
	if content.Path != "OEBPS/text/chapter1.xhtml" {
		t.Errorf("Path = %q", content.Path)
	}

	wantImages := []string{
		"OEBPS/images/photo.jpg",
		"OEBPS/text/diagrams/chart.png",
		"OEBPS/images/plate.png",
	}
	if !reflect.DeepEqual(content.ImageRefs, wantImages) {
		t.Errorf("ImageRefs = %v, want %v", content.ImageRefs, wantImages)
	}

	wantIDs := []string{"ch1", "sec1"}
	if !reflect.DeepEqual(content.IDs, wantIDs) {
		t.Errorf("IDs = %v, want %v", content.IDs, wantIDs)
	}

	if content.Document.Find("body p").Text() != "Before the picture." {
		t.Errorf("body text = %q", content.Document.Find("body p").Text())
	}
}

func TestLoadContent_NoReferences(t *testing.T) {
	content, err := LoadContent("chapter.xhtml", []byte(`<html><body><p>Plain</p></body></html>`))
	if err != nil {
		t.Fatalf("LoadContent() error = %v", err)
	}
	if len(content.ImageRefs) != 0 || len(content.IDs) != 0 {
		t.Errorf("refs = %v / %v, want none", content.ImageRefs, content.IDs)
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		base, rel, want string
	}{
		{"text", "../images/photo.jpg", "images/photo.jpg"},
		{".", "images/a.png", "images/a.png"},
		{"OEBPS/text", "./b.png", "OEBPS/text/b.png"},
	}
	for _, tt := range tests {
		if got := resolvePath(tt.base, tt.rel); got != tt.want {
			t.Errorf("resolvePath(%q, %q) = %q, want %q", tt.base, tt.rel, got, tt.want)
		}
	}
}
