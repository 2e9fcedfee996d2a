package crawler

import (
	"regexp"
	"testing"

	"nac_patrimony_crawler/internal/model"
)

var detailPattern = regexp.MustCompile(`^https://portal/ipdetails\.php`)

func TestMachineTransitions(t *testing.T) {
	m := NewMachine([]model.Identifier{"10.0.0.1", "10.0.0.2"}, "https://portal/ipdetails.php", "42", detailPattern)
	if m.State() != StateIdle {
		t.Fatalf("initial state = %v", m.State())
	}
	if m.Ready("https://portal/ipdetails.php?IP=10.0.0.1") {
		t.Error("Ready must be false before Start")
	}

	target, ok := m.Start()
	if !ok || target != "https://portal/ipdetails.php?IP=10.0.0.1&blocoConsulta=42" {
		t.Fatalf("Start = %q, %v", target, ok)
	}
	if m.State() != StateLoading || m.Current() != "10.0.0.1" {
		t.Fatalf("state=%v current=%q", m.State(), m.Current())
	}
	if m.Ready("about:blank") {
		t.Error("blank load must not be accepted")
	}
	if !m.Ready(target) {
		t.Error("detail page load must be accepted")
	}
	if _, ok := m.Start(); ok {
		t.Error("Start twice must not restart")
	}

	target, ok = m.Advance()
	if !ok || m.Index() != 1 || target != "https://portal/ipdetails.php?IP=10.0.0.2&blocoConsulta=42" {
		t.Fatalf("Advance = %q, %v (index %d)", target, ok, m.Index())
	}

	if _, ok := m.Advance(); ok {
		t.Fatal("Advance past end must report done")
	}
	if m.State() != StateDone || m.State().String() != "done" {
		t.Errorf("final state = %v", m.State())
	}
	if m.Ready(target) {
		t.Error("Ready must be false once done")
	}
	if _, ok := m.Advance(); ok {
		t.Error("Advance after done must stay done")
	}
}

func TestMachineEmpty(t *testing.T) {
	m := NewMachine(nil, "https://portal/ipdetails.php", "", detailPattern)
	if _, ok := m.Start(); ok {
		t.Fatal("empty machine must not start loading")
	}
	if m.State() != StateDone || m.Current() != "" || m.Target() != "" {
		t.Errorf("state=%v current=%q target=%q", m.State(), m.Current(), m.Target())
	}
}
