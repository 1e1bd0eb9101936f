package relation

import (
	"testing"

	"github.com/certkit/Legra/orchestrator"
)

func TestStatusHolderTransitions(t *testing.T) {
	holder := NewStatusHolder()
	if holder.Current() != orchestrator.Waiting("Starting") {
		t.Fatalf("unexpected initial status: %+v", holder.Current())
	}

	holder.Set(orchestrator.Maintenance("Executing lego command"))
	if holder.Current() != orchestrator.Maintenance("Executing lego command") {
		t.Fatalf("unexpected status: %+v", holder.Current())
	}

	holder.Set(orchestrator.Active())
	holder.Set(orchestrator.Active()) // no-op transition
	if holder.Current() != orchestrator.Active() {
		t.Fatalf("unexpected status: %+v", holder.Current())
	}
}
