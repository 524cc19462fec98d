package game

import "cycles/internal/currency"

const (
	PanelRowSize  = 8
	PanelQuadSize = 32.0
)

// Panel is one entry of a ring's cycle display: a swatch of a color
// triggered so far this cycle, laid out relative to the ring center.
type Panel struct {
	Color    SocketColor `json:"color"`
	Position Vec2        `json:"position"`
}

// PanelPosition lays panels out in rows of rowSize, each row centered,
// rows stacked so the block is vertically centered with the first row
// on top. The last row holds the remainder.
func PanelPosition(index, rowSize int, quad float64, count int) Vec2 {
	currentRow := rowSize
	if index >= count-count%rowSize && count%rowSize != 0 {
		currentRow = count % rowSize
	}
	totalRows := (count + rowSize - 1) / rowSize
	centerX := float64(currentRow) * quad / 2
	centerY := float64(totalRows) * quad / 2

	row, col := index/rowSize, index%rowSize
	return Vec2{
		X: float64(col)*quad - centerX + quad/2,
		Y: -(float64(row)*quad - centerY + quad/2),
	}
}

// DisplayTracker keeps per-ring panel lists in step with each ring's
// cycle. It only reads rings.
type DisplayTracker struct {
	panels map[RingID][]Panel
	counts map[RingID]currency.Amount
}

func NewDisplayTracker() *DisplayTracker {
	return &DisplayTracker{
		panels: make(map[RingID][]Panel),
		counts: make(map[RingID]currency.Amount),
	}
}

// Sync brings the panels up to date. A ring whose cycle count moved has
// settled since the last sync, so its panels are dropped before the new
// cycle's are added.
func (d *DisplayTracker) Sync(rings []Ring) {
	for _, r := range rings {
		panels := d.panels[r.ID]
		if prev, ok := d.counts[r.ID]; !ok || prev.Cmp(r.CycleCount) != 0 || len(r.Cycle) < len(panels) {
			panels = panels[:0]
		}
		d.counts[r.ID] = r.CycleCount
		if len(r.Cycle) == len(panels) {
			d.panels[r.ID] = panels
			continue
		}
		count := len(r.Cycle)
		for i := range panels {
			panels[i].Position = PanelPosition(i, PanelRowSize, PanelQuadSize, count)
		}
		for i := len(panels); i < count; i++ {
			panels = append(panels, Panel{
				Color:    r.Cycle[i],
				Position: PanelPosition(i, PanelRowSize, PanelQuadSize, count),
			})
		}
		d.panels[r.ID] = panels
	}
}

func (d *DisplayTracker) Panels(id RingID) []Panel {
	return append([]Panel(nil), d.panels[id]...)
}
