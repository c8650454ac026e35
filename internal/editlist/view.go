package editlist

// Row is one visible row of a page.
type Row[T any] struct {
	Number   int  `json:"number"`
	Record   T    `json:"record"`
	Editing  bool `json:"editing"`
	IsNew    bool `json:"isNew,omitempty"`
	CanEdit  bool `json:"canEdit"`
	CanSave  bool `json:"canSave"`
	Deleting bool `json:"deleting,omitempty"`
}

// Column describes a field for the table header.
type Column struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Editable bool   `json:"editable"`
	Sortable bool   `json:"sortable"`
	Required bool   `json:"required,omitempty"`
}

// View is the rendered state of a list: the visible page plus everything the
// table needs to enable or disable its controls.
type View[T any] struct {
	Rows       []Row[T]   `json:"rows"`
	Columns    []Column   `json:"columns"`
	Pagination Pagination `json:"pagination"`
	PageSizes  []int      `json:"pageSizeOptions"`
	State      string     `json:"state"`
	ActiveID   string     `json:"activeId,omitempty"`
	IsNew      bool       `json:"isNewRow"`
	Sort       string     `json:"sort,omitempty"`
	Desc       bool       `json:"desc,omitempty"`
	Prompt     *Prompt    `json:"prompt,omitempty"`
	Saving     bool       `json:"saving"`
	Loading    bool       `json:"loading"`
}

// View renders the current page. Sorting is applied to the whole collection
// before slicing; row numbers are derived from the page position.
func (l *List[T]) View() View[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := l.draft.Rows()
	if l.sortBy != "" {
		if f, ok := l.schema.Field(l.sortBy); ok && f.Less != nil {
			rows = SortStable(rows, f.Less, l.desc)
		}
	}

	l.page.Total = len(rows)
	l.page = l.page.Clamp()
	saving := l.guard.Busy(ActionPersist)

	visible := VisibleSlice(rows, l.page.Current, l.page.PageSize)
	out := View[T]{
		Rows:       make([]Row[T], 0, len(visible)),
		Columns:    l.columns(),
		Pagination: l.page,
		PageSizes:  PageSizeOptions,
		State:      StateViewing,
		Sort:       l.sortBy,
		Desc:       l.desc,
		Saving:     saving,
		Loading:    l.guard.Busy(ActionFetch),
	}
	if l.edit != nil {
		out.State = StateEditing
		out.ActiveID = l.edit.id
		out.IsNew = l.edit.isNew
	}
	if l.pending != nil {
		p := *l.pending
		out.Prompt = &p
	}

	for i, rec := range visible {
		id := l.schema.ID(rec)
		editing := l.edit != nil && l.edit.id == id
		out.Rows = append(out.Rows, Row[T]{
			Number:   RowNumber(l.page.Current, l.page.PageSize, i),
			Record:   rec,
			Editing:  editing,
			IsNew:    editing && l.edit.isNew,
			CanEdit:  l.edit == nil && !saving,
			CanSave:  editing && !saving,
			Deleting: l.pending != nil && l.pending.ID == id,
		})
	}
	return out
}

func (l *List[T]) columns() []Column {
	cols := make([]Column, 0, len(l.schema.Fields))
	for _, f := range l.schema.Fields {
		cols = append(cols, Column{
			Name:     f.Name,
			Label:    f.Label,
			Editable: f.Set != nil,
			Sortable: f.Less != nil,
			Required: f.Required,
		})
	}
	return cols
}
