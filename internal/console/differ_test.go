package console

import "testing"

func TestDiffer_NoChange(t *testing.T) {
	d := NewDiffer()

	buffer := "alice connected\n"
	delta, fresh := d.Delta(buffer, len(buffer))
	if !fresh {
		t.Fatal("Expected first read to report new content")
	}
	if delta != buffer {
		t.Errorf("Expected full buffer as delta, got %q", delta)
	}

	// Same length again: nothing new.
	delta, fresh = d.Delta(buffer, len(buffer))
	if fresh {
		t.Errorf("Expected no new content, got %q", delta)
	}
}

func TestDiffer_GrowingBuffer(t *testing.T) {
	d := NewDiffer()

	first := "0123456789012345678901234567890123456789" + "0123456789" // 50 bytes
	if _, fresh := d.Delta(first, 50); !fresh {
		t.Fatal("Expected new content on first read")
	}

	// Length sequence [50, 50, 80]: second read reports nothing, third
	// reports only the 30-byte tail.
	if _, fresh := d.Delta(first, 50); fresh {
		t.Error("Expected no new content on unchanged read")
	}

	third := first + "alice: hello from the new tail"
	delta, fresh := d.Delta(third, 80)
	if !fresh {
		t.Fatal("Expected new content on grown buffer")
	}
	if delta != "alice: hello from the new tail" {
		t.Errorf("Expected only the tail, got %q", delta)
	}
}

func TestDiffer_ShrinkRebasesSilently(t *testing.T) {
	d := NewDiffer()

	first := "a long stretch of console output before the panel reset\n"
	d.Delta(first, len(first))

	// External reset: shorter buffer. The differ rebases and reports
	// nothing new.
	short := "fresh\n"
	delta, fresh := d.Delta(short, len(short))
	if fresh {
		t.Errorf("Expected silent rebase, got delta %q", delta)
	}

	// Content appended after the rebase is reported from the new baseline.
	grown := short + "bob connected\n"
	delta, fresh = d.Delta(grown, len(grown))
	if !fresh {
		t.Fatal("Expected new content after rebase")
	}
	if delta != "bob connected\n" {
		t.Errorf("Expected post-reset tail, got %q", delta)
	}
}
