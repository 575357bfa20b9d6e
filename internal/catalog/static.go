package catalog

import (
	"context"
	"fmt"

	"proof-of-learning-go/internal/model"
)

// Static serves the built-in course catalog.
type Static struct {
	courses []model.Course
	modules map[string][]model.ModuleInfo
}

func NewStatic() *Static {
	return &Static{
		courses: builtinCourses,
		modules: builtinModules,
	}
}

func (s *Static) Courses(_ context.Context) ([]model.Course, error) {
	courses := make([]model.Course, len(s.courses))
	copy(courses, s.courses)
	return courses, nil
}

func (s *Static) Course(_ context.Context, id string) (model.Course, error) {
	for _, c := range s.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Course{}, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
}

func (s *Static) Modules(_ context.Context, courseID string) ([]model.ModuleInfo, error) {
	modules, ok := s.modules[courseID]
	if !ok {
		return DefaultModules(), nil
	}
	out := make([]model.ModuleInfo, len(modules))
	copy(out, modules)
	return out, nil
}

var builtinCourses = []model.Course{
	{
		ID:          "iota-basics",
		Title:       "IOTA Fundamentals",
		Description: "Learn the basics of IOTA blockchain, its unique tangle architecture, and how it enables feeless transactions for IoT.",
		Category:    "Blockchain",
		Duration:    "2 hours",
		Modules:     model.ModuleCount,
		ImageURL:    "https://images.unsplash.com/photo-1639762681485-074b7f938ba0?w=400&h=300&fit=crop",
		Level:       model.Beginner,
	},
	{
		ID:          "move-programming",
		Title:       "Move Smart Contracts",
		Description: "Master the Move programming language for building secure and efficient smart contracts on IOTA.",
		Category:    "Development",
		Duration:    "4 hours",
		Modules:     model.ModuleCount,
		ImageURL:    "https://images.unsplash.com/photo-1516116216624-53e697fedbea?w=400&h=300&fit=crop",
		Level:       model.Intermediate,
	},
	{
		ID:          "defi-iota",
		Title:       "DeFi on IOTA",
		Description: "Explore decentralized finance applications and protocols built on the IOTA ecosystem.",
		Category:    "DeFi",
		Duration:    "3 hours",
		Modules:     model.ModuleCount,
		ImageURL:    "https://images.unsplash.com/photo-1516116216624-53e697fedbea?w=400&h=300&fit=crop",
		Level:       model.Advanced,
	},
	{
		ID:          "nft-creation",
		Title:       "NFT Development",
		Description: "Create and deploy NFTs on IOTA blockchain using Move. Learn about digital asset standards and metadata.",
		Category:    "NFT",
		Duration:    "2.5 hours",
		Modules:     model.ModuleCount,
		ImageURL:    "https://images.unsplash.com/photo-1634973357973-f2ed2657db3c?w=400&h=300&fit=crop",
		Level:       model.Intermediate,
	},
	{
		ID:          "dapp-development",
		Title:       "Full-Stack dApp",
		Description: "Build a complete decentralized application from scratch using React, TypeScript, and IOTA SDK.",
		Category:    "Development",
		Duration:    "5 hours",
		Modules:     model.ModuleCount,
		ImageURL:    "https://images.unsplash.com/photo-1555066931-4365d14bab8c?w=400&h=300&fit=crop",
		Level:       model.Advanced,
	},
	{
		ID:          "iot-integration",
		Title:       "IoT & IOTA",
		Description: "Connect Internet of Things devices to IOTA network for secure, feeless machine-to-machine transactions.",
		Category:    "IoT",
		Duration:    "3 hours",
		Modules:     model.ModuleCount,
		ImageURL:    "https://images.unsplash.com/photo-1558346490-a72e53ae2d4f?w=400&h=300&fit=crop",
		Level:       model.Intermediate,
	},
}

var builtinModules = map[string][]model.ModuleInfo{
	"iota-basics": {
		{ID: 1, Title: "Introduction to IOTA", Description: "Understanding the Tangle and DAG architecture"},
		{ID: 2, Title: "IOTA Tokens & Wallets", Description: "Managing IOTA tokens and wallet setup"},
		{ID: 3, Title: "Network Fundamentals", Description: "Nodes, validators, and consensus"},
		{ID: 4, Title: "Use Cases & Applications", Description: "Real-world IOTA implementations"},
	},
	"move-programming": {
		{ID: 1, Title: "Move Language Basics", Description: "Syntax, types, and module structure"},
		{ID: 2, Title: "Resources & Abilities", Description: "Understanding Move's resource model"},
		{ID: 3, Title: "Writing Smart Contracts", Description: "Creating your first Move module"},
		{ID: 4, Title: "Testing & Deployment", Description: "Testing and deploying on IOTA testnet"},
	},
	"defi-iota": {
		{ID: 1, Title: "DeFi Fundamentals", Description: "Core concepts of decentralized finance"},
		{ID: 2, Title: "Liquidity & AMMs", Description: "Automated market makers and pools"},
		{ID: 3, Title: "Lending Protocols", Description: "Borrowing and lending on IOTA"},
		{ID: 4, Title: "Yield Strategies", Description: "Advanced DeFi strategies and risks"},
	},
	"nft-creation": {
		{ID: 1, Title: "NFT Concepts", Description: "Digital ownership and standards"},
		{ID: 2, Title: "Creating NFTs in Move", Description: "Writing NFT smart contracts"},
		{ID: 3, Title: "Metadata & Storage", Description: "Off-chain data and IPFS integration"},
		{ID: 4, Title: "Marketplaces", Description: "Building NFT trading functionality"},
	},
	"dapp-development": {
		{ID: 1, Title: "Project Setup", Description: "React, TypeScript, and IOTA SDK setup"},
		{ID: 2, Title: "Wallet Integration", Description: "Connecting wallets with dApp Kit"},
		{ID: 3, Title: "Smart Contract Integration", Description: "Calling Move functions from frontend"},
		{ID: 4, Title: "Deployment & Testing", Description: "Deploying your complete dApp"},
	},
	"iot-integration": {
		{ID: 1, Title: "IoT Fundamentals", Description: "Sensors, devices, and protocols"},
		{ID: 2, Title: "IOTA Streams", Description: "Secure data channels for IoT"},
		{ID: 3, Title: "Machine Economy", Description: "M2M payments and automation"},
		{ID: 4, Title: "Building IoT Solutions", Description: "End-to-end IoT project"},
	},
}
