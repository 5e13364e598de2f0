package service

import (
	"notekeep-be/internal/dto"
	"notekeep-be/internal/entity"
	"notekeep-be/internal/ordering"
)

func indexNotes(notes []*entity.Note) map[int64]*entity.Note {
	byId := make(map[int64]*entity.Note, len(notes))
	for _, n := range notes {
		byId[n.Id] = n
	}
	return byId
}

func toShowResponse(note *entity.Note) *dto.ShowNoteResponse {
	labels := make([]dto.LabelResponse, len(note.Labels))
	for i, l := range note.Labels {
		labels[i] = dto.LabelResponse{Id: l.Id, Name: l.Name}
	}

	return &dto.ShowNoteResponse{
		Id:           note.Id,
		Title:        note.Title,
		Content:      note.Content,
		Color:        note.Color,
		IsPinned:     note.IsPinned,
		IsArchived:   note.IsArchived,
		IsDeleted:    note.IsDeleted,
		DisplayOrder: note.DisplayOrder,
		Labels:       labels,
		CreatedAt:    note.CreatedAt,
		UpdatedAt:    note.UpdatedAt,
	}
}

func toShowResponses(notes []*entity.Note) []*dto.ShowNoteResponse {
	res := make([]*dto.ShowNoteResponse, len(notes))
	for i, n := range notes {
		res[i] = toShowResponse(n)
	}
	return res
}

// toBoardResponse renders snap in order. Pin flag and display order come
// from the snapshot, so a board computed before it is persisted is shown as
// it will be stored.
func toBoardResponse(snap ordering.Snapshot, notes map[int64]*entity.Note) *dto.NoteBoardResponse {
	return &dto.NoteBoardResponse{
		Pinned:   sequenceResponse(snap.Pinned, true, notes),
		Unpinned: sequenceResponse(snap.Unpinned, false, notes),
	}
}

func sequenceResponse(entries []ordering.Entry, pinned bool, notes map[int64]*entity.Note) []*dto.ShowNoteResponse {
	res := make([]*dto.ShowNoteResponse, 0, len(entries))
	for _, e := range entries {
		note, ok := notes[e.NoteID]
		if !ok {
			continue
		}
		view := toShowResponse(note)
		view.IsPinned = pinned
		view.DisplayOrder = e.DisplayOrder
		res = append(res, view)
	}
	return res
}
