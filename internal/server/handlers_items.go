package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/inspection-reports/internal/jobdata"
)

// ItemRequest is the body of item create and update
type ItemRequest struct {
	Description string `json:"description" validate:"required"`
	Quantity    string `json:"quantity,omitempty"`
	Unit        string `json:"unit,omitempty"`
	UnitPrice   string `json:"unit_price,omitempty"`
	Total       string `json:"total,omitempty"`
}

// UpdateItemRequest is ItemRequest without the description requirement
type UpdateItemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity,omitempty"`
	Unit        string `json:"unit,omitempty"`
	UnitPrice   string `json:"unit_price,omitempty"`
	Total       string `json:"total,omitempty"`
}

// ItemsResponse lists the items of a section with their totals
type ItemsResponse struct {
	List   string             `json:"list"`
	Items  []jobdata.LineItem `json:"items"`
	Totals jobdata.Totals     `json:"totals"`
	Index  int                `json:"index,omitempty"`
}

// itemList picks the invoice list, or the work item list with ?list=work.
func itemList(r *http.Request, doc *jobdata.Document) (*jobdata.ItemList, string, error) {
	sectionID := r.PathValue("section_id")
	switch list := r.URL.Query().Get("list"); list {
	case "", "invoice":
		return jobdata.InvoiceItems(doc, sectionID), "invoice", nil
	case "work":
		return jobdata.WorkItems(doc, sectionID), "work", nil
	default:
		return nil, "", &ErrValidation{Field: "list", Message: "must be invoice or work"}
	}
}

func itemsResponse(list *jobdata.ItemList, name string) ItemsResponse {
	items := list.Items()
	if items == nil {
		items = []jobdata.LineItem{}
	}
	return ItemsResponse{List: name, Items: items, Totals: list.Totals()}
}

func itemIndex(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 {
		return 0, &ErrValidation{Field: "n", Message: "item index must be a positive integer"}
	}
	return n, nil
}

// handleListItems returns the numbered items of a section
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	_, doc, err := s.editor.Load(r.Context(), r.PathValue("job_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, name, err := itemList(r, doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, itemsResponse(list, name))
}

// handleAddItem appends an item and recalculates the totals
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, _, err := itemList(r, jobdata.New()); err != nil {
		s.writeError(w, r, err)
		return
	}

	var resp ItemsResponse
	var addErr error
	_, err := s.editor.Update(r.Context(), r.PathValue("job_id"), func(doc *jobdata.Document) bool {
		list, name, _ := itemList(r, doc)
		n, err := list.Add(jobdata.LineItem(req))
		if err != nil {
			addErr = err
			return false
		}
		resp = itemsResponse(list, name)
		resp.Index = n
		return true
	})
	if err == nil {
		err = addErr
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resp)
}

// handleUpdateItem replaces item n. An empty description deletes it.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	n, err := itemIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req UpdateItemRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, _, err := itemList(r, jobdata.New()); err != nil {
		s.writeError(w, r, err)
		return
	}

	item := jobdata.LineItem(req)
	var resp ItemsResponse
	err = s.update(r, r.PathValue("job_id"), "item", r.PathValue("n"), func(doc *jobdata.Document) bool {
		list, name, _ := itemList(r, doc)
		if !list.Update(n, item) {
			return false
		}
		resp = itemsResponse(list, name)
		return true
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleDeleteItem removes item n and shifts later items down
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	n, err := itemIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, _, err := itemList(r, jobdata.New()); err != nil {
		s.writeError(w, r, err)
		return
	}
	var resp ItemsResponse
	err = s.update(r, r.PathValue("job_id"), "item", r.PathValue("n"), func(doc *jobdata.Document) bool {
		list, name, _ := itemList(r, doc)
		if n > list.Count() || !list.DeleteItem(n) {
			return false
		}
		resp = itemsResponse(list, name)
		return true
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}
