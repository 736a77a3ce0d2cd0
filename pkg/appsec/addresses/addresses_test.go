package addresses

import "testing"

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want bool
	}{
		{name: "known request address", addr: ServerRequestRawURI, want: true},
		{name: "known response address", addr: ServerResponseStatus, want: true},
		{name: "unknown address", addr: Address("server.request.nonsense"), want: false},
		{name: "empty address", addr: Address(""), want: false},
		{name: "case sensitive", addr: Address("SERVER.REQUEST.METHOD"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.addr); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) != len(known) {
		t.Fatalf("All() returned %d addresses, want %d", len(all), len(known))
	}
	for _, a := range all {
		if !Valid(a) {
			t.Errorf("All() returned invalid address %q", a)
		}
	}
}

func TestIsStatusCode(t *testing.T) {
	if !IsStatusCode(ServerResponseStatus) {
		t.Error("IsStatusCode(ServerResponseStatus) = false, want true")
	}
	if IsStatusCode(ServerRequestMethod) {
		t.Error("IsStatusCode(ServerRequestMethod) = true, want false")
	}
}
