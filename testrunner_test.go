package pixelnest

import "testing"

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "click", "x": 100, "y": 200},
			{"action": "wait", "frames": 3},
			{"action": "wheel", "x": 10, "y": 10, "deltaY": 120},
			{"action": "screenshot", "label": "after-click"}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "screenshot" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "click" || runner.steps[1].X != 100 || runner.steps[1].Y != 200 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
	if runner.steps[3].DeltaY != 120 {
		t.Error("step 3 mismatch")
	}
}

func TestLoadTestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `not json`},
		{"empty steps", `{"steps": []}`},
		{"unknown action", `{"steps": [{"action": "teleport"}]}`},
		{"unknown blend mode", `{"steps": [{"action": "blend", "mode": "hard-light"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTestScript([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunnerStep_Click(t *testing.T) {
	e := newTestEditorView(t, nil)
	it := placeImage(t, e, "crate", solid(300, 300, opaqueRed))
	e.Scene().ClearSelection()

	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "click", "x": 250, "y": 150}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetTestRunner(runner)

	// First frame: the click queues press+release and the press is routed.
	e.step(frameDT, frameInput{})
	if len(e.injectQueue) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(e.injectQueue))
	}
	if runner.Done() {
		t.Error("runner should not be done while inject queue has events")
	}
	e.step(frameDT, frameInput{})
	e.step(frameDT, frameInput{})
	if !runner.Done() {
		t.Error("runner should be done after all steps executed and queue drained")
	}
	if e.Scene().Selected() != it {
		t.Error("scripted click should select the item")
	}
}

func TestRunnerStep_Drag(t *testing.T) {
	e := newTestEditorView(t, nil)
	it := placeImage(t, e, "crate", solid(300, 300, opaqueRed))

	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "drag", "fromX": 250, "fromY": 150, "toX": 270, "toY": 140, "frames": 3}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetTestRunner(runner)
	for i := 0; i < 10 && !runner.Done(); i++ {
		e.step(frameDT, frameInput{})
	}
	if !runner.Done() {
		t.Fatal("runner did not finish")
	}
	if it.Position != (Point{20, -10}) {
		t.Errorf("position = %v, want {20 -10}", it.Position)
	}
}

func TestRunnerStep_PressMoveRelease(t *testing.T) {
	e := newTestEditorView(t, nil)
	vp := e.Scene().Viewport()
	x0 := vp.OffsetX

	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "press", "x": 10, "y": 10},
		{"action": "move", "x": 30, "y": 10},
		{"action": "release", "x": 35, "y": 10}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetTestRunner(runner)
	for i := 0; i < 10 && !runner.Done(); i++ {
		e.step(frameDT, frameInput{})
	}
	if vp.OffsetX != x0+25 {
		t.Errorf("offset = %v, want %v", vp.OffsetX, x0+25)
	}
}

func TestRunnerStep_Wait(t *testing.T) {
	e := newTestEditorView(t, nil)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "wait", "frames": 3}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetTestRunner(runner)

	// Frame 1 executes the wait (counts as one frame), frames 2-3 count down.
	for i := 0; i < 3; i++ {
		e.step(frameDT, frameInput{})
	}
	if runner.Done() {
		t.Error("runner should not be done before the wait ends")
	}
	e.step(frameDT, frameInput{})
	if !runner.Done() {
		t.Error("runner should be done after the wait")
	}
}

func TestRunnerStep_Screenshot(t *testing.T) {
	e := newTestEditorView(t, nil)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "screenshot", "label": "start"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetTestRunner(runner)
	if e.TestRunner() != runner {
		t.Fatal("runner not attached")
	}
	e.step(frameDT, frameInput{})
	if len(e.screenshotQueue) != 1 || e.screenshotQueue[0] != "start" {
		t.Errorf("queue = %v", e.screenshotQueue)
	}
	if !runner.Done() {
		t.Error("runner should finish with its last step")
	}
}

func TestRunnerStep_Blend(t *testing.T) {
	e := newTestEditorView(t, nil)
	it := placeImage(t, e, "crate", solid(40, 40, opaqueRed))

	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "blend", "mode": "screen"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetTestRunner(runner)
	e.step(frameDT, frameInput{})
	if it.BlendMode != BlendScreen {
		t.Errorf("blend = %v, want screen", it.BlendMode)
	}
	if !runner.Done() {
		t.Error("runner should finish with its last step")
	}
}
