package cleanup

import (
	"errors"
	"strings"
	"testing"
)

func TestRunAll_LIFOAndErrors(t *testing.T) {
	var order []string
	Register("model", func() error { order = append(order, "model"); return nil })
	Register("nil", nil)
	Register("server", func() error { order = append(order, "server"); return errors.New("shutdown timed out") })

	if got := Pending(); len(got) != 2 {
		t.Fatalf("Pending() = %v", got)
	}

	err := RunAll()
	if err == nil || !strings.Contains(err.Error(), "server: shutdown timed out") {
		t.Fatalf("RunAll() error = %v", err)
	}
	if strings.Join(order, ",") != "server,model" {
		t.Fatalf("order = %v", order)
	}
	if err := RunAll(); err != nil {
		t.Fatalf("second RunAll() error = %v", err)
	}
}
