package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/crosswordduel/internal/api/response"
	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/dictionary"
)

// WordHandler answers dictionary lookups for clients without a local word list
type WordHandler struct {
	dictionary dictionary.ServiceInterface
}

// NewWordHandler creates a new word handler
func NewWordHandler(dict dictionary.ServiceInterface) *WordHandler {
	return &WordHandler{dictionary: dict}
}

// Check handles GET /api/v1/words/{word}
func (h *WordHandler) Check(w http.ResponseWriter, r *http.Request) {
	if !h.dictionary.IsLoaded() {
		WriteError(w, model.ErrDictionaryNotLoaded)
		return
	}

	word := strings.ToUpper(mux.Vars(r)["word"])
	response.JSON(w, http.StatusOK, response.WordCheck{
		Word:  word,
		Valid: h.dictionary.IsValidWord(word),
	})
}
