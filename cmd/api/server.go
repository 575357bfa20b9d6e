package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"proof-of-learning-go/internal/catalog"
	"proof-of-learning-go/internal/learning"
	"proof-of-learning-go/internal/ledger"
	"proof-of-learning-go/internal/model"
	"proof-of-learning-go/internal/session"

	"github.com/gorilla/mux"
	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"
)

// Mailer is implemented by *notifications.Sender.
type Mailer interface {
	SendCertificateEmail(destinationEmail string, cert model.Certificate, explorerURL string) error
}

type Server struct {
	port       int
	catalog    catalog.Source
	sessions   *session.Manager
	mailer     Mailer
	explorer   ledger.ExplorerURLs
	blockchain bool
	newRelic   *newrelic.Application
	httpServer *http.Server
}

type ServerOptions struct {
	Mailer     Mailer
	Explorer   ledger.ExplorerURLs
	Blockchain bool
	NewRelic   *newrelic.Application
}

func NewServer(port int, source catalog.Source, sessions *session.Manager, opts ServerOptions) *Server {
	return &Server{
		port:       port,
		catalog:    source,
		sessions:   sessions,
		mailer:     opts.Mailer,
		explorer:   opts.Explorer,
		blockchain: opts.Blockchain,
		newRelic:   opts.NewRelic,
	}
}

func (s *Server) handle(router *mux.Router, method, pattern string, handler http.HandlerFunc) {
	_, wrapped := newrelic.WrapHandleFunc(s.newRelic, method+" "+pattern, handler)
	router.HandleFunc(pattern, wrapped).Methods(method)
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(logRequests)

	s.handle(router, "GET", "/courses", s.listCourses)
	s.handle(router, "GET", "/courses/{id}", s.getCourse)

	s.handle(router, "POST", "/sessions", s.createSession)
	s.handle(router, "DELETE", "/sessions", s.authenticate(s.deleteSession))

	s.handle(router, "POST", "/wallet", s.authenticate(s.connectWallet))
	s.handle(router, "DELETE", "/wallet", s.authenticate(s.disconnectWallet))

	s.handle(router, "POST", "/courses/{id}/start", s.authenticate(s.startCourse))
	s.handle(router, "POST", "/courses/{id}/modules/{index:[0-9]+}/complete", s.authenticate(s.completeModule))
	s.handle(router, "POST", "/courses/{id}/certificate", s.authenticate(s.mintCertificate))

	s.handle(router, "GET", "/progress", s.authenticate(s.listProgress))
	s.handle(router, "GET", "/progress/{id}", s.authenticate(s.getProgress))
	s.handle(router, "GET", "/certificates", s.authenticate(s.listCertificates))
	s.handle(router, "GET", "/status", s.authenticate(s.status))

	s.handle(router, "GET", "/chain/progress", s.authenticate(s.chainProgress))
	s.handle(router, "GET", "/chain/certificates", s.authenticate(s.chainCertificates))

	return router
}

func (s *Server) Run() error {
	address := "0.0.0.0"

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%v:%v", address, s.port),
		Handler: s.Router(),
	}

	log.Printf("listening requests at %v:%v", address, s.port)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encoding response: %v", err)
	}
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrCourseNotFound):
		status = http.StatusNotFound
	case errors.Is(err, learning.ErrInvalidModule),
		errors.Is(err, session.ErrInvalidAddress):
		status = http.StatusBadRequest
	case errors.Is(err, learning.ErrCourseNotStarted),
		errors.Is(err, learning.ErrCourseNotCompleted),
		errors.Is(err, learning.ErrAlreadyCertified),
		errors.Is(err, learning.ErrOperationInProgress),
		errors.Is(err, ledger.ErrWalletNotConnected):
		status = http.StatusConflict
	case errors.Is(err, learning.ErrLedgerCall),
		errors.Is(err, learning.ErrMintFailed):
		status = http.StatusBadGateway
	case errors.Is(err, session.ErrWalletUnsupported):
		status = http.StatusNotImplemented
	}

	if status == http.StatusInternalServerError {
		log.Errorf("internal error: %v", err)
	}

	http.Error(w, err.Error(), status)
}

// detached keeps ledger calls running when the client goes away, so an
// executed transaction is never lost halfway.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) certificateResponse(cert model.Certificate) CertificateResponse {
	resp := CertificateResponse{Certificate: cert}
	if cert.TransactionDigest != "" {
		resp.Explorer.Transaction = s.explorer.Transaction(cert.TransactionDigest)
	}
	if cert.ObjectID != "" {
		resp.Explorer.Object = s.explorer.Object(cert.ObjectID)
	}
	if cert.OwnerAddress != "" {
		resp.Explorer.Owner = s.explorer.Address(cert.OwnerAddress)
	}
	return resp
}
