// Package floorplan turns floor-plan analyzer output and hand-written room
// files into the ordered room list the inspection session loads, and derives
// the per-room checklist and 3D layout data from it.
package floorplan
