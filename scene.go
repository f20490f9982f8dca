package pixelnest

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/google/uuid"
)

// DefaultGroupName names the group every new scene starts with.
const DefaultGroupName = "Base Room"

// DeleteAssetPrompt is shown before an asset and its placed items are removed.
const DeleteAssetPrompt = "Delete this asset permanently? This will remove it from the canvas too."

// Slider limits for item adjustments.
const (
	maxFilterPercent = 200
	maxBlurRadius    = 20
	maxShadowRadius  = 20
)

// newID returns a fresh random identifier for groups, items and assets.
func newID() string {
	return uuid.NewString()
}

// Scene is the top-level object that owns the viewport, groups, placed items,
// asset library, selection and the active pointer gesture. All mutation goes
// through its methods; it is not safe for concurrent use.
type Scene struct {
	groups []*Group
	items  []*Item
	assets []Asset

	viewport         Viewport
	screenW, screenH float64

	selectedID    string
	activeGroupID string

	// Pointer gesture state.
	interaction Interaction
	panning     bool
	lastPointer Vec2

	debug bool
}

// NewScene creates an empty scene containing the default group, which is
// also the active group.
func NewScene() *Scene {
	s := &Scene{viewport: NewViewport()}
	g := s.AddGroup(DefaultGroupName)
	s.activeGroupID = g.ID
	return s
}

// SetDebugMode enables or disables debug logging to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Viewport returns the scene's viewport for reading or direct manipulation.
func (s *Scene) Viewport() *Viewport {
	return &s.viewport
}

// SetScreenSize records the size of the screen the scene is drawn on. It is
// used for placement and session start.
func (s *Scene) SetScreenSize(w, h float64) {
	s.screenW, s.screenH = w, h
}

// ScreenSize returns the size last passed to SetScreenSize.
func (s *Scene) ScreenSize() (w, h float64) {
	return s.screenW, s.screenH
}

// StartSession resets the viewport so the world origin sits slightly up-left
// of the screen center at no zoom.
func (s *Scene) StartSession() {
	s.viewport.CenterOn(s.screenW, s.screenH)
	s.debugf("session started, viewport %+v", s.viewport)
}

// --- Groups ---

// Groups returns the groups in render order. The returned slice MUST NOT be
// mutated.
func (s *Scene) Groups() []*Group {
	return s.groups
}

// Group returns the group with the given id, or nil.
func (s *Scene) Group(id string) *Group {
	for _, g := range s.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// AddGroup appends a visible, unlocked group and makes it the active group.
func (s *Scene) AddGroup(name string) *Group {
	g := &Group{ID: newID(), Name: name, Visible: true}
	s.groups = append(s.groups, g)
	s.activeGroupID = g.ID
	return g
}

// ActiveGroup returns the group new items are placed into, or nil when the
// active group has been deleted.
func (s *Scene) ActiveGroup() *Group {
	return s.Group(s.activeGroupID)
}

// SetActiveGroup selects the group new items are placed into.
func (s *Scene) SetActiveGroup(id string) error {
	if s.Group(id) == nil {
		return fmt.Errorf("set active group %q: %w", id, ErrGroupNotFound)
	}
	s.activeGroupID = id
	return nil
}

// ToggleGroupVisibility shows or hides a group. Hidden groups are neither
// drawn nor hit-tested.
func (s *Scene) ToggleGroupVisibility(id string) error {
	g := s.Group(id)
	if g == nil {
		return fmt.Errorf("toggle visibility %q: %w", id, ErrGroupNotFound)
	}
	g.Visible = !g.Visible
	return nil
}

// ToggleGroupLock locks or unlocks a group. Items of a locked group reject
// pointer gestures and the group cannot receive new items.
func (s *Scene) ToggleGroupLock(id string) error {
	g := s.Group(id)
	if g == nil {
		return fmt.Errorf("toggle lock %q: %w", id, ErrGroupNotFound)
	}
	g.Locked = !g.Locked
	return nil
}

// DeleteGroup removes a group together with its items. When the active group
// is removed the first remaining group becomes active.
func (s *Scene) DeleteGroup(id string) error {
	i := slices.IndexFunc(s.groups, func(g *Group) bool { return g.ID == id })
	if i < 0 {
		return fmt.Errorf("delete group %q: %w", id, ErrGroupNotFound)
	}
	s.groups = slices.Delete(s.groups, i, i+1)
	s.removeItems(func(it *Item) bool { return it.GroupID == id })
	if s.activeGroupID == id {
		s.activeGroupID = ""
		if len(s.groups) > 0 {
			s.activeGroupID = s.groups[0].ID
		}
	}
	return nil
}

// --- Assets ---

// AddAsset adds an asset to the front of the library.
func (s *Scene) AddAsset(a Asset) {
	s.assets = slices.Insert(s.assets, 0, a)
	s.debugf("asset %q added (%s %dx%d)", a.AssetName(), a.Kind(), a.NaturalSize().Width, a.NaturalSize().Height)
}

// Asset returns the asset with the given id, or nil.
func (s *Scene) Asset(id string) Asset {
	for _, a := range s.assets {
		if a.AssetID() == id {
			return a
		}
	}
	return nil
}

// Assets returns the library, newest first. The returned slice MUST NOT be
// mutated.
func (s *Scene) Assets() []Asset {
	return s.assets
}

// DeleteAsset removes an asset and every item placed from it once confirm
// approves DeleteAssetPrompt. It reports whether anything was deleted.
func (s *Scene) DeleteAsset(id string, confirm func(prompt string) bool) (bool, error) {
	i := slices.IndexFunc(s.assets, func(a Asset) bool { return a.AssetID() == id })
	if i < 0 {
		return false, fmt.Errorf("delete asset %q: %w", id, ErrAssetNotFound)
	}
	if confirm == nil || !confirm(DeleteAssetPrompt) {
		return false, nil
	}
	s.assets = slices.Delete(s.assets, i, i+1)
	s.removeItems(func(it *Item) bool { return it.AssetID == id })
	return true, nil
}

// --- Items ---

// Items returns every placed item in insertion order. The returned slice MUST
// NOT be mutated.
func (s *Scene) Items() []*Item {
	return s.items
}

// Item returns the placed item with the given id, or nil.
func (s *Scene) Item(id string) *Item {
	for _, it := range s.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Selected returns the selected item, or nil.
func (s *Scene) Selected() *Item {
	if s.selectedID == "" {
		return nil
	}
	return s.Item(s.selectedID)
}

// Select makes id the selected item.
func (s *Scene) Select(id string) error {
	if s.Item(id) == nil {
		return fmt.Errorf("select %q: %w", id, ErrItemNotFound)
	}
	s.selectedID = id
	return nil
}

// ClearSelection deselects the selected item.
func (s *Scene) ClearSelection() {
	s.selectedID = ""
}

// Place puts a new item for the asset at the center of the screen in the
// active group and selects it. The size comes from AutoSize; the z-index is
// one above the highest in the group.
func (s *Scene) Place(assetID string) (*Item, error) {
	g := s.ActiveGroup()
	if g == nil || g.Locked || !g.Visible {
		return nil, ErrGroupUnavailable
	}
	a := s.Asset(assetID)
	if a == nil {
		return nil, fmt.Errorf("place %q: %w", assetID, ErrAssetNotFound)
	}

	wx, wy := s.viewport.ScreenToWorld(s.screenW/2, s.screenH/2)
	size := AutoSize(a.NaturalSize())

	maxZ := 0
	for _, it := range s.items {
		if it.GroupID == g.ID && it.ZIndex > maxZ {
			maxZ = it.ZIndex
		}
	}

	it := &Item{
		ID:      newID(),
		AssetID: assetID,
		GroupID: g.ID,
		Name:    a.AssetName(),
		Position: Point{
			X: round(wx - float64(size.Width)/2),
			Y: round(wy - float64(size.Height)/2),
		},
		Size:    size,
		ZIndex:  maxZ + 1,
		Filters: DefaultFilters,
	}
	s.items = append(s.items, it)
	s.selectedID = it.ID
	s.debugf("placed %q at %v size %v z=%d", it.Name, it.Position, it.Size, it.ZIndex)
	return it, nil
}

// mustItem looks up an item for a mutation named op.
func (s *Scene) mustItem(op, id string) (*Item, error) {
	it := s.Item(id)
	if it == nil {
		return nil, fmt.Errorf("%s %q: %w", op, id, ErrItemNotFound)
	}
	return it, nil
}

// MoveItem sets an item's world position.
func (s *Scene) MoveItem(id string, pos Point) error {
	it, err := s.mustItem("move", id)
	if err != nil {
		return err
	}
	it.Position = pos
	return nil
}

// ResizeItem sets an item's world size. Widths below MinItemWidth are raised
// to it.
func (s *Scene) ResizeItem(id string, size Size) error {
	it, err := s.mustItem("resize", id)
	if err != nil {
		return err
	}
	it.Size = Size{max(MinItemWidth, size.Width), max(0, size.Height)}
	return nil
}

// RotateItem sets an item's rotation in degrees, normalized to [0, 360).
func (s *Scene) RotateItem(id string, degrees float64) error {
	it, err := s.mustItem("rotate", id)
	if err != nil {
		return err
	}
	it.Rotation = math.Mod(math.Mod(degrees, 360)+360, 360)
	return nil
}

// FlipItem mirrors an item horizontally.
func (s *Scene) FlipItem(id string) error {
	it, err := s.mustItem("flip", id)
	if err != nil {
		return err
	}
	it.FlipX = !it.FlipX
	return nil
}

// RaiseItem moves an item one step up within its group.
func (s *Scene) RaiseItem(id string) error {
	it, err := s.mustItem("raise", id)
	if err != nil {
		return err
	}
	it.ZIndex++
	return nil
}

// LowerItem moves an item one step down within its group, stopping at zero.
func (s *Scene) LowerItem(id string) error {
	it, err := s.mustItem("lower", id)
	if err != nil {
		return err
	}
	it.ZIndex = max(0, it.ZIndex-1)
	return nil
}

// Reorder assigns z-indices to a group's items from a top-to-bottom list:
// the item at index i gets len(ids)-i. Items of the group missing from ids
// keep their z-index.
func (s *Scene) Reorder(groupID string, ids []string) error {
	if s.Group(groupID) == nil {
		return fmt.Errorf("reorder %q: %w", groupID, ErrGroupNotFound)
	}
	for _, it := range s.items {
		if it.GroupID != groupID {
			continue
		}
		if i := slices.Index(ids, it.ID); i >= 0 {
			it.ZIndex = len(ids) - i
		}
	}
	return nil
}

// ToggleItemLock locks or unlocks an item.
func (s *Scene) ToggleItemLock(id string) error {
	it, err := s.mustItem("lock", id)
	if err != nil {
		return err
	}
	it.Locked = !it.Locked
	return nil
}

// DeleteItem removes a placed item.
func (s *Scene) DeleteItem(id string) error {
	if _, err := s.mustItem("delete", id); err != nil {
		return err
	}
	s.removeItems(func(it *Item) bool { return it.ID == id })
	return nil
}

// DuplicateItem copies an item, offset by DuplicateOffset on both axes, and
// selects the copy.
func (s *Scene) DuplicateItem(id string) (*Item, error) {
	it, err := s.mustItem("duplicate", id)
	if err != nil {
		return nil, err
	}
	cp := *it
	cp.ID = newID()
	cp.Position.X += DuplicateOffset
	cp.Position.Y += DuplicateOffset
	s.items = append(s.items, &cp)
	s.selectedID = cp.ID
	return &cp, nil
}

// RenameItem sets an item's layer name.
func (s *Scene) RenameItem(id, name string) error {
	it, err := s.mustItem("rename", id)
	if err != nil {
		return err
	}
	it.Name = name
	return nil
}

// SetFilters replaces an item's filters, clamping each to its slider range.
func (s *Scene) SetFilters(id string, f Filters) error {
	it, err := s.mustItem("filter", id)
	if err != nil {
		return err
	}
	it.Filters = Filters{
		Brightness: clamp(f.Brightness, 0, maxFilterPercent),
		Contrast:   clamp(f.Contrast, 0, maxFilterPercent),
		Saturation: clamp(f.Saturation, 0, maxFilterPercent),
		Blur:       clamp(f.Blur, 0, maxBlurRadius),
	}
	return nil
}

// SetBlendMode sets how an item composites over what is below it.
func (s *Scene) SetBlendMode(id string, mode BlendMode) error {
	it, err := s.mustItem("blend", id)
	if err != nil {
		return err
	}
	it.BlendMode = mode
	return nil
}

// ToggleShadow switches an item's drop shadow between off and DefaultShadow.
func (s *Scene) ToggleShadow(id string) error {
	it, err := s.mustItem("shadow", id)
	if err != nil {
		return err
	}
	if it.Shadow > 0 {
		it.Shadow = 0
	} else {
		it.Shadow = DefaultShadow
	}
	return nil
}

// SetShadow sets an item's drop-shadow blur radius, clamped to [0, 20].
func (s *Scene) SetShadow(id string, radius float64) error {
	it, err := s.mustItem("shadow", id)
	if err != nil {
		return err
	}
	it.Shadow = clamp(radius, 0, maxShadowRadius)
	return nil
}

// ReplaceItemAsset points an item at a new asset, such as the result of a
// crop or background cleanup, and resets its size to the asset's native size.
// The asset must already be in the library.
func (s *Scene) ReplaceItemAsset(itemID, assetID string) error {
	it, err := s.mustItem("replace asset", itemID)
	if err != nil {
		return err
	}
	a := s.Asset(assetID)
	if a == nil {
		return fmt.Errorf("replace asset %q: %w", assetID, ErrAssetNotFound)
	}
	it.AssetID = assetID
	it.Size = a.NaturalSize()
	return nil
}

// SaveEditedAsset adds img to the library as a new image asset and, when
// itemID is not empty, points that item at it. It is how crop and background
// cleanup results land on the canvas; the source asset is left untouched.
func (s *Scene) SaveEditedAsset(itemID, name string, img image.Image) (*ImageAsset, error) {
	if itemID != "" {
		if _, err := s.mustItem("save edited asset", itemID); err != nil {
			return nil, err
		}
	}
	a := &ImageAsset{ID: newID(), Name: name, Pixels: ToNRGBA(img)}
	s.AddAsset(a)
	if itemID != "" {
		if err := s.ReplaceItemAsset(itemID, a.ID); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// RenderOrder returns the items to draw, bottom first: groups in list order,
// then ascending z-index within a group. Hidden groups and items whose asset
// is gone are skipped. Items with equal z-index keep insertion order.
func (s *Scene) RenderOrder() []*Item {
	var out []*Item
	for _, g := range s.groups {
		if !g.Visible {
			continue
		}
		start := len(out)
		for _, it := range s.items {
			if it.GroupID == g.ID && s.Asset(it.AssetID) != nil {
				out = append(out, it)
			}
		}
		slices.SortStableFunc(out[start:], func(a, b *Item) int {
			return a.ZIndex - b.ZIndex
		})
	}
	return out
}

// ItemAt returns the topmost drawn item under a screen point and which part
// of it was hit. The resize handle only counts for the selected item when it
// can be edited.
func (s *Scene) ItemAt(sx, sy float64) (*Item, ItemHandle) {
	wx, wy := s.viewport.ScreenToWorld(sx, sy)
	order := s.RenderOrder()
	for i := len(order) - 1; i >= 0; i-- {
		it := order[i]
		withHandle := it.ID == s.selectedID && s.editable(it)
		if h := it.HitTest(wx, wy, withHandle); h != HandleNone {
			return it, h
		}
	}
	return nil, HandleNone
}

// editable reports whether neither the item nor its group is locked.
func (s *Scene) editable(it *Item) bool {
	if it.Locked {
		return false
	}
	g := s.Group(it.GroupID)
	return g == nil || !g.Locked
}

// removeItems deletes every item matching drop, clearing the selection and
// any gesture that referenced a removed item.
func (s *Scene) removeItems(drop func(*Item) bool) {
	s.items = slices.DeleteFunc(s.items, func(it *Item) bool {
		if !drop(it) {
			return false
		}
		if it.ID == s.selectedID {
			s.selectedID = ""
		}
		if it.ID == s.interaction.ItemID {
			s.interaction = Interaction{}
		}
		return true
	})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
