package main

import (
	"proof-of-learning-go/internal/learning"
	"proof-of-learning-go/internal/model"
)

type CreateSessionRequest struct {
	Email string `json:"email"`
}

type CreateSessionResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type ConnectWalletRequest struct {
	Address string `json:"address"`
}

type WalletResponse struct {
	Address     string `json:"address"`
	ExplorerURL string `json:"explorer_url,omitempty"`
}

type CourseResponse struct {
	model.Course
	ModuleOutline []model.ModuleInfo `json:"module_outline"`
}

type ProgressResponse struct {
	model.LearningProgress
	CompletedModules int `json:"completed_modules"`
	Percent          int `json:"percent"`
}

func newProgressResponse(p model.LearningProgress) ProgressResponse {
	done := p.CompletedCount()
	return ProgressResponse{
		LearningProgress: p,
		CompletedModules: done,
		Percent:          done * 100 / model.ModuleCount,
	}
}

type ExplorerLinks struct {
	Transaction string `json:"transaction,omitempty"`
	Object      string `json:"object,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

type CertificateResponse struct {
	model.Certificate
	Explorer ExplorerLinks `json:"explorer"`
}

type StatusResponse struct {
	learning.Status
	WalletAddress string `json:"wallet_address,omitempty"`
	Blockchain    bool   `json:"blockchain"`
}
