package main

import "testing"

func TestMainRunsKindlecoversCLI(t *testing.T) {
	runs := 0
	orig := execute
	execute = func() { runs++ }
	t.Cleanup(func() { execute = orig })

	main()

	if runs != 1 {
		t.Fatalf("expected the kindlecovers CLI to run once, ran %d times", runs)
	}
}
