// Package layout plans partition and LVM layouts.
//
// A desired Disk or VolumeGroup is built from the requested layout, the
// observed state is built the same way from inventory records and attached to
// it, then Plan returns the actions needed to reach the requested layout.
// Planning never touches storage and never mutates the observed state.
package layout
