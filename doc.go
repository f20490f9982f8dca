// Package pixelnest is a 2D scene editor for [Ebitengine]: an infinite,
// pannable and zoomable canvas on which image and video assets are placed,
// arranged into build groups and adjusted, plus a crop tool and a
// background removal editor for single images.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	assets, err := pixelnest.LoadAssets(ctx, reqs, nil)
//	scene := pixelnest.NewScene()
//	for _, a := range assets {
//		scene.AddAsset(a)
//	}
//	editor := pixelnest.NewEditor(scene, pixelnest.EditorConfig{})
//	pixelnest.Run(editor, pixelnest.RunConfig{Title: "pixelnest"})
//
// [Editor] implements [ebiten.Game], so it can also be embedded in a larger
// game loop.
//
// # Scene
//
// A [Scene] owns the [Viewport], the build [Group]s, the placed [Item]s and
// the asset library. Every mutation goes through a Scene method. Rejected
// input is reported with sentinel errors such as [ErrGroupUnavailable] and
// [ErrItemLocked]; the editor turns those into notices.
//
// Pointer gestures are driven with [Scene.PointerDown], [Scene.PointerMove]
// and [Scene.PointerUp]. A drag or resize is computed from the snapshot
// taken at pointer-down, so the result does not depend on how many move
// events arrive.
//
// # Image editing
//
// [CropSelection] is the crop tool's rectangle state machine and
// [CropImage] extracts a selection at native resolution. [BackgroundEditor]
// provides the wand, the brush eraser, undo and automatic removal through an
// [ImageService]. Edited images are saved as new assets; the original asset
// is never modified.
//
// # Automated testing
//
// Synthetic pointer input can be queued with [Editor.InjectClick],
// [Editor.InjectDrag] and friends, or scripted with [LoadTestScript] and
// [Editor.SetTestRunner]. [Editor.Screenshot] captures labeled PNGs.
//
// [Ebitengine]: https://ebitengine.org
package pixelnest
