package anchor

import (
	"strings"
	"testing"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

func dated(location string, start, end int) model.Candidate {
	r := model.NewDateRange(start, end)
	return model.Candidate{Location: location, Range: &r}
}

func TestLocator_Locate_FirstOccurrenceTagged(t *testing.T) {
	doc := NewDocumentFromText("The fair opened in Paris in 1889.\nParis grew quickly in 1889.")
	l := NewLocator(doc, nil)

	anchors := l.Locate(dated("Paris", 1889, 1889))
	if len(anchors) != 2 {
		t.Fatalf("Expected one anchor per qualifying element, got %d", len(anchors))
	}
	if anchors[0].Element != 0 || anchors[1].Element != 1 {
		t.Errorf("Expected anchors in document order, got %+v", anchors)
	}
	if got := doc.Elements[0].Text[anchors[0].Offset : anchors[0].Offset+anchors[0].Length]; got != "Paris" {
		t.Errorf("Expected the span to cover Paris, got %q", got)
	}
}

func TestLocator_Locate_DateGateFiltersElements(t *testing.T) {
	doc := NewDocumentFromText("Paris has many museums.\nParis hosted the fair in 1889.")
	l := NewLocator(doc, nil)

	anchors := l.Locate(dated("Paris", 1889, 1889))
	if len(anchors) != 1 {
		t.Fatalf("Expected only the dated element to anchor, got %d", len(anchors))
	}
	if anchors[0].Element != 1 {
		t.Errorf("Expected anchor in element 1, got %d", anchors[0].Element)
	}
}

func TestLocator_Locate_CenturyMentionPassesGate(t *testing.T) {
	doc := NewDocumentFromText("Rome flourished in the second century.")
	l := NewLocator(doc, nil)

	anchors := l.Locate(dated("Rome", 100, 199))
	if len(anchors) != 1 {
		t.Errorf("Expected a century mention to satisfy the date gate, got %d anchors", len(anchors))
	}
}

func TestLocator_Locate_WordBoundaryExtension(t *testing.T) {
	doc := NewDocumentFromText("European trade routes shifted after 1500. Europe recovered slowly.")
	l := NewLocator(doc, nil)

	anchors := l.Locate(dated("Europe", 1500, 1500))
	if len(anchors) != 1 {
		t.Fatalf("Expected 1 anchor, got %d", len(anchors))
	}
	a := anchors[0]
	got := doc.Elements[0].Text[a.Offset : a.Offset+a.Length]
	if got != "European" {
		t.Errorf("Expected the match to extend to the word boundary, got %q", got)
	}
}

func TestLocator_Locate_SecondCandidateTakesNextOccurrence(t *testing.T) {
	doc := NewDocumentFromText("Vienna and Vienna again, all in 1900.")
	l := NewLocator(doc, nil)

	first := l.Locate(dated("Vienna", 1900, 1900))
	if len(first) != 1 {
		t.Fatalf("Expected 1 anchor for the first candidate, got %d", len(first))
	}

	second := l.Locate(dated("Vienna", 1900, 1905))
	if len(second) != 1 {
		t.Fatalf("Expected 1 anchor for the second candidate, got %d", len(second))
	}
	if second[0].Offset == first[0].Offset {
		t.Errorf("Expected the second candidate to claim a different occurrence, got offset %d twice", second[0].Offset)
	}
}

func TestLocator_Locate_SameCandidateNotRetagged(t *testing.T) {
	doc := NewDocumentFromText("Vienna hosted a congress in 1814.")
	l := NewLocator(doc, nil)

	c := dated("Vienna", 1814, 1814)
	if n := len(l.Locate(c)); n != 1 {
		t.Fatalf("Expected 1 anchor, got %d", n)
	}
	if n := len(l.Locate(c)); n != 0 {
		t.Errorf("Expected a repeat locate to tag nothing, got %d", n)
	}
}

func TestLocator_Locate_ElementMustContainFullLocation(t *testing.T) {
	doc := NewDocumentFromText("Paris hosted the exhibition in 1889.")
	l := NewLocator(doc, nil)

	anchors := l.Locate(dated("Paris, France", 1889, 1889))
	if len(anchors) != 0 {
		t.Errorf("Expected no anchors when the element lacks the full location, got %+v", anchors)
	}
}

func TestLocator_Locate_CanonicalContainmentQualifies(t *testing.T) {
	doc := NewDocumentFromText("The delegates met in Ghent, Belgium, in 1814.")
	l := NewLocator(doc, nil)

	anchors := l.Locate(dated("ghent belgium", 1814, 1814))
	if len(anchors) != 1 {
		t.Fatalf("Expected canonical containment to qualify the element, got %d", len(anchors))
	}
	a := anchors[0]
	got := doc.Elements[0].Text[a.Offset : a.Offset+a.Length]
	if got != "Ghent" {
		t.Errorf("Expected the comma-segment needle to pick the span, got %q", got)
	}
}

func TestLocator_Locate_FallbackNeedles(t *testing.T) {
	doc := NewDocumentFromText("Ghent Belgium saw the treaty signed in 1814.")
	l := NewLocator(doc, nil)

	anchors := l.Locate(dated("Ghent, Belgium", 1814, 1814))
	if len(anchors) != 1 {
		t.Fatalf("Expected the comma segment to anchor, got %d", len(anchors))
	}
	a := anchors[0]
	got := doc.Elements[0].Text[a.Offset : a.Offset+a.Length]
	if got != "Ghent" {
		t.Errorf("Expected the span to cover Ghent, got %q", got)
	}
}

func TestLocator_Locate_NoMatch(t *testing.T) {
	doc := NewDocumentFromText("Nothing about that place here in 1900.")
	l := NewLocator(doc, nil)

	if anchors := l.Locate(dated("Samarkand", 1900, 1900)); len(anchors) != 0 {
		t.Errorf("Expected no anchors, got %d", len(anchors))
	}
}

func TestLocator_Locate_UndatedCandidateSkipsGate(t *testing.T) {
	doc := NewDocumentFromText("Lisbon sits on the Tagus.")
	l := NewLocator(doc, nil)

	anchors := l.Locate(model.Candidate{Location: "Lisbon"})
	if len(anchors) != 1 {
		t.Errorf("Expected an undated candidate to anchor without the date gate, got %d", len(anchors))
	}
}

func TestParseDocument_BlockElementsInOrder(t *testing.T) {
	html := `<html><body>
		<h1>Title</h1>
		<script>ignored()</script>
		<p>First <b>paragraph</b> text.</p>
		<ul><li>Item one</li></ul>
	</body></html>`

	doc, err := ParseDocument(html)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(doc.Elements) != 3 {
		t.Fatalf("Expected 3 elements, got %d: %+v", len(doc.Elements), doc.Elements)
	}
	if doc.Elements[0].Tag != "h1" || doc.Elements[1].Tag != "p" || doc.Elements[2].Tag != "li" {
		t.Errorf("Unexpected tags: %+v", doc.Elements)
	}
	if doc.Elements[1].Text != "First paragraph text." {
		t.Errorf("Expected inline markup flattened, got %q", doc.Elements[1].Text)
	}
}

func TestDocument_Tag_HandleStableAcrossGrowth(t *testing.T) {
	doc := NewDocumentFromText("Paris in 1889.")

	first := doc.Tag(0, 0, 5, "paris|1889-1889")
	for i := 0; i < 64; i++ {
		doc.Tag(0, i, 1, "filler")
	}

	if first.Offset != 0 || first.Length != 5 || first.Key != "paris|1889-1889" {
		t.Errorf("Expected the returned span to survive registry growth, got %+v", first)
	}
	if got := len(doc.Spans()); got != 65 {
		t.Errorf("Expected 65 registered spans, got %d", got)
	}
}

func TestDocument_Annotated(t *testing.T) {
	doc := NewDocumentFromText("The fair opened in Paris in 1889.")
	l := NewLocator(doc, nil)
	l.Locate(dated("Paris", 1889, 1889))

	out := doc.Annotated()
	if !strings.Contains(out, "«Paris»") {
		t.Errorf("Expected the annotated text to wrap Paris, got %q", out)
	}
}
