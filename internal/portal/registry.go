package portal

// Registry is the bounded, insertion-ordered set of placed portals. Each
// pose owns one render slot in [0, Cap()).
type Registry struct {
	capacity int
	poses    []Pose
	nextID   int
}

// NewRegistry returns an empty registry. Capacities below one are raised
// to one.
func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry{capacity: capacity, poses: make([]Pose, 0, capacity)}
}

func (r *Registry) Cap() int { return r.capacity }

func (r *Registry) Len() int { return len(r.poses) }

// Poses returns a copy of the poses, oldest first.
func (r *Registry) Poses() []Pose {
	out := make([]Pose, len(r.poses))
	copy(out, r.poses)
	return out
}

// Get returns the pose with the given id.
func (r *Registry) Get(id int) (Pose, bool) {
	for _, p := range r.poses {
		if p.ID == id {
			return p, true
		}
	}
	return Pose{}, false
}

// BySlot returns the pose occupying a render slot.
func (r *Registry) BySlot(slot int) (Pose, bool) {
	for _, p := range r.poses {
		if p.Slot == slot {
			return p, true
		}
	}
	return Pose{}, false
}

// Insert appends a new pose built from pl, evicting the oldest pose first
// when the registry is full. The new pose takes the lowest free slot.
func (r *Registry) Insert(pl Placement) (placed Pose, evicted []Pose) {
	for len(r.poses) >= r.capacity {
		evicted = append(evicted, r.poses[0])
		r.poses = append(r.poses[:0], r.poses[1:]...)
	}
	placed = r.newPose(r.freeSlot(), pl)
	placed.ID = r.takeID()
	r.poses = append(r.poses, placed)
	r.refreshActive()
	return r.mustGet(placed.ID), evicted
}

// Replace re-places the pose in slot, keeping its id. The pose becomes the
// most recently placed one, so it joins the active pair. An empty slot is
// claimed as a fresh insertion. Slots outside [0, Cap()) are rejected.
func (r *Registry) Replace(slot int, pl Placement) (placed Pose, replaced bool, ok bool) {
	if slot < 0 || slot >= r.capacity {
		return Pose{}, false, false
	}
	for i, p := range r.poses {
		if p.Slot != slot {
			continue
		}
		next := r.newPose(slot, pl)
		next.ID = p.ID
		r.poses = append(r.poses[:i], r.poses[i+1:]...)
		r.poses = append(r.poses, next)
		r.refreshActive()
		return r.mustGet(next.ID), true, true
	}
	placed = r.newPose(slot, pl)
	placed.ID = r.takeID()
	r.poses = append(r.poses, placed)
	r.refreshActive()
	return r.mustGet(placed.ID), false, true
}

// Evict removes the pose with the given id. Evicting an unknown id is a no-op.
func (r *Registry) Evict(id int) (Pose, bool) {
	for i, p := range r.poses {
		if p.ID == id {
			r.poses = append(r.poses[:i], r.poses[i+1:]...)
			r.refreshActive()
			return p, true
		}
	}
	return Pose{}, false
}

// Reset removes every pose. Ids keep increasing across resets.
func (r *Registry) Reset() {
	r.poses = r.poses[:0]
}

// Links returns the directed links between the two most recently placed
// poses, both directions, newer pose as the first source. Fewer than two
// poses means no links.
func (r *Registry) Links() []Link {
	n := len(r.poses)
	if n < 2 {
		return nil
	}
	a, b := r.poses[n-1], r.poses[n-2]
	return []Link{{Source: a, Dest: b}, {Source: b, Dest: a}}
}

// Partner returns the pose linked with id, if id is active.
func (r *Registry) Partner(id int) (Pose, bool) {
	for _, l := range r.Links() {
		if l.Source.ID == id {
			return l.Dest, true
		}
	}
	return Pose{}, false
}

func (r *Registry) newPose(slot int, pl Placement) Pose {
	return Pose{
		Slot:        slot,
		Position:    pl.Position,
		Normal:      pl.Normal,
		Orientation: pl.Orientation,
		ColorTag:    TagForSlot(slot),
	}
}

func (r *Registry) takeID() int {
	id := r.nextID
	r.nextID++
	return id
}

func (r *Registry) freeSlot() int {
	used := make([]bool, r.capacity)
	for _, p := range r.poses {
		used[p.Slot] = true
	}
	for i, u := range used {
		if !u {
			return i
		}
	}
	return len(r.poses)
}

func (r *Registry) refreshActive() {
	n := len(r.poses)
	for i := range r.poses {
		r.poses[i].Active = n >= 2 && i >= n-2
	}
}

func (r *Registry) mustGet(id int) Pose {
	p, _ := r.Get(id)
	return p
}
