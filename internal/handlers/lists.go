package handlers

import (
	"net/http"

	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/services"
	"github.com/Scroti/want-to-watch/internal/types"
	"github.com/Scroti/want-to-watch/internal/utils"
)

type ListHandler struct {
	store      *database.Store
	activities *services.ActivityWriter
}

func NewListHandler(store *database.Store, activities *services.ActivityWriter) *ListHandler {
	return &ListHandler{store: store, activities: activities}
}

// GetLists returns ?userId='s lists, the caller's own lists, or every public
// list for anonymous callers. Other users only ever see public lists.
func (h *ListHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	viewer := viewerID(r)
	filter := database.ListFilter{
		OwnerID:    utils.GetQueryParam(r, "userId", viewer),
		ViewerID:   viewer,
		PublicOnly: utils.GetQueryParamBool(r, "publicOnly"),
	}

	lists, err := h.store.ListLists(r.Context(), filter)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, lists, http.StatusOK)
}

func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.CreateListRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	list, err := h.store.CreateList(r.Context(), user.ID, req)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	h.activities.Record(r.Context(), user.ID, types.ActivityCreatedList, list.ID, types.TargetList, map[string]any{
		"name": list.Name,
	})

	utils.RespondJSON(w, list, http.StatusCreated)
}

func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.GetListWithItems(r.Context(), utils.GetPathParam(r, "id"), viewerID(r))
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, list, http.StatusOK)
}

func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.UpdateListRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	list, err := h.store.UpdateList(r.Context(), user.ID, utils.GetPathParam(r, "id"), req)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	utils.RespondJSON(w, list, http.StatusOK)
}

// DeleteList removes a list together with its items.
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteList(r.Context(), user.ID, utils.GetPathParam(r, "id")); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	respondSuccess(w)
}

func (h *ListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.AddListItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	listID := utils.GetPathParam(r, "id")
	item, err := h.store.AddListItem(r.Context(), user.ID, listID, req.MediaID)
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}

	h.activities.Record(r.Context(), user.ID, types.ActivityAddedToList, listID, types.TargetList, map[string]any{
		"media_id": item.MediaID,
	})

	utils.RespondJSON(w, item, http.StatusCreated)
}

func (h *ListHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	err := h.store.RemoveListItem(r.Context(), user.ID, utils.GetPathParam(r, "id"), utils.GetPathParam(r, "mediaId"))
	if err != nil {
		utils.RespondStoreError(w, r, err)
		return
	}
	respondSuccess(w)
}
