package relay

import (
	"encoding/json"
	"net/http"
	"strconv"

	"lifestuff/internal/domain"
)

const maxBody = 16 << 20

// NewHandler serves backend under the relay routes.
func NewHandler(backend domain.RelayClient) http.Handler {
	s := &server{backend: backend}
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /packet/{name}", s.putPacket)
	mux.HandleFunc("GET /packet/{name}", s.getPacket)
	mux.HandleFunc("DELETE /packet/{name}", s.deletePacket)
	mux.HandleFunc("GET /packet/{name}/unique", s.keyUnique)
	mux.HandleFunc("POST /msg/{id}", s.send)
	mux.HandleFunc("GET /msg/{id}", s.fetch)
	mux.HandleFunc("POST /msg/{id}/ack", s.ack)
	return mux
}

type server struct {
	backend domain.RelayClient
}

func (s *server) putPacket(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r)
	if !ok {
		return
	}
	var p domain.SignedData
	if !decode(w, r, &p) {
		return
	}
	if err := s.backend.Put(r.Context(), name, p); err != nil {
		fail(w, "put", err)
		return
	}
	log.Debugf("stored %s", name.Short())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) getPacket(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r)
	if !ok {
		return
	}
	p, err := s.backend.Get(r.Context(), name)
	if err != nil {
		fail(w, "get", err)
		return
	}
	reply(w, p)
}

func (s *server) deletePacket(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r)
	if !ok {
		return
	}
	var proof domain.OwnershipProof
	if !decode(w, r, &proof) {
		return
	}
	if err := s.backend.Delete(r.Context(), name, proof); err != nil {
		fail(w, "delete", err)
		return
	}
	log.Debugf("deleted %s", name.Short())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) keyUnique(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r)
	if !ok {
		return
	}
	unique, err := s.backend.KeyUnique(r.Context(), name)
	if err != nil {
		fail(w, "key_unique", err)
		return
	}
	reply(w, struct {
		Unique bool `json:"unique"`
	}{unique})
}

func (s *server) send(w http.ResponseWriter, r *http.Request) {
	var msg domain.Message
	if !decode(w, r, &msg) {
		return
	}
	msg.To = domain.PublicID(r.PathValue("id"))
	if err := s.backend.Send(r.Context(), msg); err != nil {
		fail(w, "send", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) fetch(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	msgs, err := s.backend.Fetch(r.Context(), domain.PublicID(r.PathValue("id")), limit)
	if err != nil {
		fail(w, "fetch", err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	reply(w, msgs)
}

func (s *server) ack(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Count int `json:"count"`
	}
	if !decode(w, r, &in) {
		return
	}
	if err := s.backend.Ack(r.Context(), domain.PublicID(r.PathValue("id")), in.Count); err != nil {
		fail(w, "ack", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathName(w http.ResponseWriter, r *http.Request) (domain.Identifier, bool) {
	name, err := domain.ParseIdentifier(r.PathValue("name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return name, false
	}
	return name, true
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(out); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("write reply: %v", err)
	}
}

func fail(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Errorf("%s: %v", op, err)
	}
	http.Error(w, err.Error(), status)
}
