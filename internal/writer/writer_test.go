// internal/writer/writer_test.go
package writer

import (
	"context"
	"errors"
	"testing"
	"time"
)

// ---- fake endpoint client ----

type fakeEndpointClient struct {
	writes []writeCall
	fail   error
	block  bool
}

type writeCall struct {
	measurement string
	tags        map[string]string
	fields      map[string]interface{}
	at          time.Time
}

func (f *fakeEndpointClient) WritePoint(
	ctx context.Context,
	measurement string,
	tags map[string]string,
	fields map[string]interface{},
	at time.Time,
) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.fail != nil {
		return f.fail
	}
	f.writes = append(f.writes, writeCall{
		measurement: measurement,
		tags:        tags,
		fields:      fields,
		at:          at,
	})
	return nil
}

func point() Point {
	return Point{
		Measurement: "battery_modbus_metrics",
		Tags:        map[string]string{"metric": "pv_power"},
		Fields:      map[string]interface{}{"value_watts": int64(4200)},
		At:          time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ---- tests ----

func TestWriter_DeliversToEverySink(t *testing.T) {
	a := &fakeEndpointClient{}
	b := &fakeEndpointClient{}

	w := New([]namedClient{{name: "a", cli: a}, {name: "b", cli: b}}, time.Second)

	if err := w.Write(context.Background(), point()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, f := range map[string]*fakeEndpointClient{"a": a, "b": b} {
		if len(f.writes) != 1 {
			t.Fatalf("sink %s: expected 1 write, got %d", name, len(f.writes))
		}
		got := f.writes[0]
		if got.measurement != "battery_modbus_metrics" || got.tags["metric"] != "pv_power" {
			t.Fatalf("sink %s: unexpected point %+v", name, got)
		}
		if got.fields["value_watts"] != int64(4200) {
			t.Fatalf("sink %s: unexpected fields %+v", name, got.fields)
		}
	}
}

func TestWriter_FailingSinkDoesNotStopOthers(t *testing.T) {
	bad := &fakeEndpointClient{fail: errors.New("401 unauthorized")}
	good := &fakeEndpointClient{}

	w := New([]namedClient{{name: "bad", cli: bad}, {name: "good", cli: good}}, time.Second)

	err := w.Write(context.Background(), point())
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	var se *SinkError
	if !errors.As(err, &se) {
		t.Fatalf("expected SinkError, got %T", err)
	}
	if se.Sink != "bad" {
		t.Fatalf("expected failing sink 'bad', got %q", se.Sink)
	}

	if len(good.writes) != 1 {
		t.Fatalf("good sink should still receive the point")
	}
}

func TestWriter_TimeoutBoundsWrite(t *testing.T) {
	stuck := &fakeEndpointClient{block: true}
	w := New([]namedClient{{name: "stuck", cli: stuck}}, 20*time.Millisecond)

	start := time.Now()
	err := w.Write(context.Background(), point())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("write was not bounded by timeout")
	}
}

func TestWriter_DefaultTimestamp(t *testing.T) {
	f := &fakeEndpointClient{}
	w := New([]namedClient{{name: "f", cli: f}}, time.Second)

	p := point()
	p.At = time.Time{}
	if err := w.Write(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.writes[0].at.IsZero() {
		t.Fatalf("zero timestamp must be replaced")
	}
}

func TestWriter_RejectsEmptyPoint(t *testing.T) {
	w := New([]namedClient{{name: "f", cli: &fakeEndpointClient{}}}, time.Second)

	if err := w.Write(context.Background(), Point{Measurement: "m"}); err == nil {
		t.Fatalf("expected error for point without fields")
	}
	if err := New(nil, 0).Write(context.Background(), point()); err == nil {
		t.Fatalf("expected error without sinks")
	}
}
