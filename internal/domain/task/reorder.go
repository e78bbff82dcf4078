package task

// Reorder returns a new list in which the tasks of projectID are replaced by
// block. The block takes the position of the project's first task; if the
// project has no tasks it is appended. Tasks of other projects keep their
// relative order.
func Reorder(tasks []Task, projectID int64, block []Task) []Task {
	out := make([]Task, 0, len(tasks)+len(block))
	placed := false
	for _, t := range tasks {
		if t.ProjectID != projectID {
			out = append(out, t)
			continue
		}
		if !placed {
			out = append(out, block...)
			placed = true
		}
	}
	if !placed {
		out = append(out, block...)
	}
	return out
}
