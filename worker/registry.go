package worker

import "fmt"

// operations is populated at init time, before any worker can be spawned,
// and is read-only afterwards.
var operations = make(map[string]Operation)

// RegisterOperation records op under name for dispatch inside workers. It
// panics on a duplicate name; like gob.Register it is meant to be called
// from package init functions.
func RegisterOperation(name string, op Operation) {
	if name == "" || op == nil {
		panic("worker: RegisterOperation with empty name or nil operation")
	}
	if _, ok := operations[name]; ok {
		panic(fmt.Sprintf("worker: operation %q registered twice", name))
	}
	operations[name] = op
}

func lookupOperation(name string) Operation {
	return operations[name]
}
