package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"

	"proof-of-learning-go/internal/learning"
	"proof-of-learning-go/internal/ledger"
	"proof-of-learning-go/internal/model"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.catalog.Courses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) getCourse(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	course, err := s.catalog.Course(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	modules, err := s.catalog.Modules(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CourseResponse{Course: course, ModuleOutline: modules})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var request CreateSessionRequest
	err := json.NewDecoder(r.Body).Decode(&request)

	if err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, token, err := s.sessions.Create(request.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{ID: sess.ID, Token: token})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(sessionFrom(r.Context()).ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) connectWallet(w http.ResponseWriter, r *http.Request) {
	var request ConnectWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := sessionFrom(r.Context())
	if err := sess.ConnectWallet(request.Address); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WalletResponse{
		Address:     sess.WalletAddress(),
		ExplorerURL: s.explorer.Address(sess.WalletAddress()),
	})
}

func (s *Server) disconnectWallet(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).DisconnectWallet()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) startCourse(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := s.catalog.Course(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	progress, err := sessionFrom(r.Context()).Store.StartCourse(detached(r), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newProgressResponse(progress))
}

func (s *Server) completeModule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.catalog.Course(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	store := sessionFrom(r.Context()).Store
	if err := store.CompleteModule(detached(r), id, index); err != nil {
		writeError(w, err)
		return
	}

	progress, ok := store.CourseProgress(id)
	if !ok {
		writeError(w, learning.ErrCourseNotStarted)
		return
	}

	writeJSON(w, http.StatusOK, newProgressResponse(progress))
}

func (s *Server) mintCertificate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	course, err := s.catalog.Course(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	sess := sessionFrom(r.Context())
	cert, err := sess.Store.MintCertificateNFT(detached(r), id, course.Title)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := s.certificateResponse(cert)

	if s.mailer != nil && sess.Email != "" {
		if err := s.mailer.SendCertificateEmail(sess.Email, cert, resp.Explorer.Object); err != nil {
			log.WithField("certificate", cert.ID).Errorf("sending certificate email: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listProgress(w http.ResponseWriter, r *http.Request) {
	all := sessionFrom(r.Context()).Store.Progress()

	progress := make([]ProgressResponse, 0, len(all))
	for _, p := range all {
		progress = append(progress, newProgressResponse(p))
	}
	sort.Slice(progress, func(i, j int) bool {
		return progress[i].CourseID < progress[j].CourseID
	})

	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	progress, ok := sessionFrom(r.Context()).Store.CourseProgress(id)
	if !ok {
		http.Error(w, "no progress for course: "+id, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, newProgressResponse(progress))
}

func (s *Server) listCertificates(w http.ResponseWriter, r *http.Request) {
	certs := sessionFrom(r.Context()).Store.Certificates()

	resp := make([]CertificateResponse, 0, len(certs))
	for _, c := range certs {
		resp = append(resp, s.certificateResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	st := sess.Store.Status()
	if sess.Ledger != nil {
		st.Loading = st.Loading || sess.Ledger.Loading()
		if st.Error == "" {
			st.Error = sess.Ledger.Err()
		}
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        st,
		WalletAddress: sess.WalletAddress(),
		Blockchain:    s.blockchain,
	})
}

func (s *Server) chainProgress(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess.Ledger == nil || !sess.Ledger.Connected() {
		writeError(w, ledger.ErrWalletNotConnected)
		return
	}

	progress := sess.Ledger.UserProgress(r.Context())
	if progress == nil {
		progress = []model.ProgressObject{}
	}

	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) chainCertificates(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess.Ledger == nil || !sess.Ledger.Connected() {
		writeError(w, ledger.ErrWalletNotConnected)
		return
	}

	certs := sess.Ledger.UserCertificates(r.Context())
	if certs == nil {
		certs = []model.OnChainCertificate{}
	}

	writeJSON(w, http.StatusOK, certs)
}
