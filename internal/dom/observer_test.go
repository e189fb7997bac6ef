package dom

import (
	"testing"
)

// TestObserver tests mutation batching and filtering.
func TestObserver(t *testing.T) {
	t.Parallel()

	t.Run("child list and filtered attributes are batched", func(t *testing.T) {
		t.Parallel()

		d := mustParse(t, `<html><body><div id="host"><a id="a" href="/a">a</a></div></body></html>`, "")
		var batches [][]MutationRecord
		d.Observe(d.Body(), ObserveOptions{
			ChildList:       true,
			Subtree:         true,
			AttributeFilter: []string{"href", "target"},
		}, func(records []MutationRecord) {
			batches = append(batches, records)
		})

		a := d.ElementByID("a")
		d.SetAttr(a, "href", "/b")
		d.SetAttr(a, "title", "ignored")
		d.SetStyleProperty(a, "color", "red", false)
		if _, err := d.InsertHTML(d.ElementByID("host"), `<a href="/c">c</a>`); err != nil {
			t.Fatalf("InsertHTML failed: %v", err)
		}

		if got := d.Flush(); got != 1 {
			t.Fatalf("expected 1 batch, got %d", got)
		}
		records := batches[0]
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Type != MutationAttributes || records[0].AttributeName != "href" || records[0].OldValue != "/a" {
			t.Errorf("unexpected attribute record: %+v", records[0])
		}
		if records[1].Type != MutationChildList || len(records[1].Added) != 1 {
			t.Errorf("unexpected child list record: %+v", records[1])
		}

		if got := d.Flush(); got != 0 {
			t.Errorf("expected nothing left to flush, got %d", got)
		}
	})

	t.Run("mutations outside the target are ignored without subtree", func(t *testing.T) {
		t.Parallel()

		d := mustParse(t, `<html><body><div id="host"><p id="p"></p></div></body></html>`, "")
		count := 0
		d.Observe(d.ElementByID("host"), ObserveOptions{ChildList: true}, func(records []MutationRecord) {
			count += len(records)
		})

		if _, err := d.InsertHTML(d.ElementByID("p"), "<span>x</span>"); err != nil {
			t.Fatalf("InsertHTML failed: %v", err)
		}
		if _, err := d.InsertHTML(d.ElementByID("host"), "<span>y</span>"); err != nil {
			t.Fatalf("InsertHTML failed: %v", err)
		}
		d.Flush()
		if count != 1 {
			t.Errorf("expected only the direct child insertion, got %d records", count)
		}
	})

	t.Run("callback mutations are delivered in a later round", func(t *testing.T) {
		t.Parallel()

		d := mustParse(t, `<html><body><a id="a" href="/a">a</a></body></html>`, "")
		a := d.ElementByID("a")
		rounds := 0
		d.Observe(d.Body(), ObserveOptions{Subtree: true, AttributeFilter: []string{"href"}}, func(records []MutationRecord) {
			rounds++
			if rounds == 1 {
				d.SetAttr(a, "href", "/again")
			}
		})

		d.SetAttr(a, "href", "/b")
		if got := d.Flush(); got != 2 {
			t.Errorf("expected 2 batches, got %d", got)
		}
	})

	t.Run("disconnect drops queued records", func(t *testing.T) {
		t.Parallel()

		d := mustParse(t, `<html><body><a id="a" href="/a">a</a></body></html>`, "")
		called := false
		o := d.Observe(d.Body(), ObserveOptions{Subtree: true, Attributes: true}, func([]MutationRecord) {
			called = true
		})
		d.SetAttr(d.ElementByID("a"), "href", "/b")
		o.Disconnect()
		d.Flush()
		if called {
			t.Error("expected no delivery after disconnect")
		}
	})

	t.Run("take records", func(t *testing.T) {
		t.Parallel()

		d := mustParse(t, `<html><body><a id="a" href="/a">a</a></body></html>`, "")
		o := d.Observe(d.Body(), ObserveOptions{Subtree: true, Attributes: true}, func([]MutationRecord) {
			t.Error("callback should not run for taken records")
		})
		d.RemoveAttr(d.ElementByID("a"), "href")
		records := o.TakeRecords()
		if len(records) != 1 || !records[0].HadValue {
			t.Fatalf("unexpected records: %+v", records)
		}
		d.Flush()
	})
}

// TestEvents tests listener registration and dispatch.
func TestEvents(t *testing.T) {
	t.Parallel()

	d := mustParse(t, `<html><body><a id="a" href="/a">a</a></body></html>`, "")
	a := d.ElementByID("a")

	var got []Event
	enter := d.AddEventListener(a, EventMouseEnter, func(ev Event) { got = append(got, ev) })
	d.AddEventListener(a, EventMouseLeave, func(ev Event) { got = append(got, ev) })

	if n := d.ListenerCount(a, EventMouseEnter); n != 1 {
		t.Errorf("expected 1 enter listener, got %d", n)
	}

	if n := d.Dispatch(a, EventMouseEnter, Pointer{X: 5, Y: 6}); n != 1 {
		t.Errorf("expected 1 listener invoked, got %d", n)
	}
	if len(got) != 1 || got[0].Pointer.X != 5 || got[0].Target != a {
		t.Errorf("unexpected event: %+v", got)
	}

	if !d.RemoveEventListener(a, enter) {
		t.Error("expected listener to be removed")
	}
	if d.RemoveEventListener(a, enter) {
		t.Error("expected second removal to fail")
	}
	if n := d.Dispatch(a, EventMouseEnter, Pointer{}); n != 0 {
		t.Errorf("expected no enter listeners, got %d", n)
	}

	t.Run("listener may re-enter the document", func(t *testing.T) {
		d.AddEventListener(a, EventMouseEnter, func(ev Event) {
			d.SetAttr(ev.Target, "data-seen", "1")
		})
		d.Dispatch(a, EventMouseEnter, Pointer{})
		if v, _ := d.Attr(a, "data-seen"); v != "1" {
			t.Error("expected listener to mutate the document")
		}
	})
}
