package task

// The functions below maintain a client-side copy of the collection. None of them
// touch the canonical store; they only decide how server replies are folded into the
// copy a presentation layer renders from.

// MergeCreated combines the server reply to a create with the draft the client sent.
// ID, CreatedAt and Completed always come from the server. Title, Description,
// Priority and DueDate come from the draft whenever the draft supplied them.
func MergeCreated(server Task, draft Draft) Task {
	merged := server
	if draft.Title != "" {
		merged.Title = draft.Title
	}
	if draft.Description != "" {
		merged.Description = draft.Description
	}
	if draft.Priority != "" {
		merged.Priority = draft.Priority
	}
	if draft.DueDate != nil {
		merged.DueDate = draft.DueDate.Clone()
	}
	return merged
}

// ToggleReply is a toggle response as received. Completed is nil when the server
// omitted the flag.
type ToggleReply struct {
	ID        int64 `json:"id"`
	Completed *bool `json:"completed"`
}

// ApplyToggle folds a toggle reply into the local task, flipping the local flag when
// the reply does not carry one.
func ApplyToggle(local Task, reply ToggleReply) Task {
	if reply.Completed != nil {
		local.Completed = *reply.Completed
	} else {
		local.Completed = !local.Completed
	}
	return local
}

// ReplaceByID returns a copy of tasks with the task sharing t's id replaced by t.
// When no task matches, t is appended.
func ReplaceByID(tasks []Task, t Task) []Task {
	out := make([]Task, len(tasks), len(tasks)+1)
	copy(out, tasks)
	for i := range out {
		if out[i].ID == t.ID {
			out[i] = t
			return out
		}
	}
	return append(out, t)
}

// RemoveByID returns a copy of tasks without the task with the given id.
func RemoveByID(tasks []Task, id int64) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// MoveByID returns a copy of tasks with the task id moved to position index.
// Out-of-range indexes are clamped; an unknown id returns an unchanged copy.
func MoveByID(tasks []Task, id int64, index int) []Task {
	from := -1
	for i, t := range tasks {
		if t.ID == id {
			from = i
			break
		}
	}

	out := make([]Task, len(tasks))
	copy(out, tasks)
	if from < 0 {
		return out
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	if index < 0 {
		index = 0
	}
	if index > len(out) {
		index = len(out)
	}
	out = append(out, Task{})
	copy(out[index+1:], out[index:])
	out[index] = moved
	return out
}
