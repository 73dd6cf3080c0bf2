package authorization

// Entry is the per-room record returned to the frontend for an authorized room.
type Entry struct {
	OK            bool    `json:"ok"`
	EntryURL      *string `json:"entryUrl"`
	ContactHandle *string `json:"contactHandle"`
}

// Decision is the reduction of all room outcomes for one email.
//
// Entries is positionally aligned with the configured rooms, a nil element
// meaning the room is not accessible.
type Decision struct {
	Granted       bool
	Entries       []*Entry
	ContactHandle *string
}

// Reduce folds the responses, ordered by room, into a Decision.
func Reduce(responses []Response) Decision {
	d := Decision{
		Entries: make([]*Entry, len(responses)),
	}

	for i, res := range responses {
		if res.Outcome != OutcomeAuthorized {
			continue
		}

		d.Entries[i] = &Entry{
			OK:            true,
			EntryURL:      res.EntryURL,
			ContactHandle: res.ContactHandle,
		}
		d.Granted = true

		if d.ContactHandle == nil && res.ContactHandle != nil {
			d.ContactHandle = res.ContactHandle
		}
	}

	return d
}
