package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terralab/prockit/algorithm"
	"github.com/terralab/prockit/component"
	"github.com/terralab/prockit/errors"
	"github.com/terralab/prockit/provider"
	"github.com/terralab/prockit/registry"
	"github.com/terralab/prockit/version"
)

// API exposes the provider registry over the discovery routes.
type API struct {
	serviceName string
	registry    *registry.Registry
}

// RegisterRoutes mounts the discovery API on the server's Gin engine.
func RegisterRoutes(s *Server, serviceName string, reg *registry.Registry) {
	api := &API{serviceName: serviceName, registry: reg}

	engine := s.GinEngine()
	engine.GET("/health", api.health)
	engine.GET("/version", api.version)

	v1 := engine.Group("/api/v1")
	v1.GET("/providers", api.listProviders)
	v1.GET("/providers/:id", api.getProvider)
	v1.GET("/providers/:id/algorithms", api.listAlgorithms)
	v1.POST("/providers/:id/refresh", api.refreshProvider)
	v1.GET("/algorithms/:id", api.getAlgorithm)
}

// ProviderSummary is the list-view representation of a provider.
type ProviderSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	LongName       string `json:"longName"`
	CanBeActivated bool   `json:"canBeActivated"`
	Active         bool   `json:"active"`
	AlgorithmCount int    `json:"algorithmCount"`
}

// ProviderDetail extends the summary with capability and format queries.
type ProviderDetail struct {
	ProviderSummary
	VectorExtensions       []string `json:"vectorExtensions"`
	RasterExtensions       []string `json:"rasterExtensions"`
	NonFileBasedOutput     bool     `json:"nonFileBasedOutput"`
	DefaultVectorExtension string   `json:"defaultVectorExtension"`
	DefaultRasterExtension string   `json:"defaultRasterExtension"`
	Icon                   string   `json:"icon,omitempty"`
	SVGIconPath            string   `json:"svgIconPath,omitempty"`
}

// AlgorithmView is the API representation of an algorithm descriptor.
type AlgorithmView struct {
	ID          string         `json:"id"`
	Provider    string         `json:"provider"`
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName"`
	Group       string         `json:"group,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func summarize(p *provider.Provider) ProviderSummary {
	return ProviderSummary{
		ID:             p.ID(),
		Name:           p.Name(),
		LongName:       p.LongName(),
		CanBeActivated: p.CanBeActivated(),
		Active:         p.IsActive(),
		AlgorithmCount: len(p.Algorithms()),
	}
}

func algorithmView(p *provider.Provider, d *algorithm.Descriptor) AlgorithmView {
	return AlgorithmView{
		ID:          p.ID() + ":" + d.Name(),
		Provider:    p.ID(),
		Name:        d.Name(),
		DisplayName: d.DisplayName(),
		Group:       d.Group(),
		Tags:        d.Tags(),
		Metadata:    d.Metadata(),
	}
}

func (a *API) health(c *gin.Context) {
	h := a.registry.Health(c.Request.Context())

	status := http.StatusOK
	if h.Status == component.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"service":    a.serviceName,
		"status":     h.Status,
		"components": []component.Health{h},
	})
}

func (a *API) version(c *gin.Context) {
	RespondOK(c, version.Get())
}

func (a *API) listProviders(c *gin.Context) {
	providers := a.registry.Providers()
	summaries := make([]ProviderSummary, 0, len(providers))
	for _, p := range providers {
		summaries = append(summaries, summarize(p))
	}
	RespondOK(c, summaries)
}

func (a *API) getProvider(c *gin.Context) {
	id := c.Param("id")
	p, exists := a.registry.ProviderByID(id)
	if !exists {
		RespondWithError(c, errors.NotFound("provider", id))
		return
	}

	RespondOK(c, ProviderDetail{
		ProviderSummary:        summarize(p),
		VectorExtensions:       p.SupportedOutputVectorLayerExtensions(),
		RasterExtensions:       p.SupportedOutputRasterLayerExtensions(),
		NonFileBasedOutput:     p.SupportsNonFileBasedOutput(),
		DefaultVectorExtension: p.DefaultVectorFileExtension(true),
		DefaultRasterExtension: p.DefaultRasterFileExtension(),
		Icon:                   p.Icon(),
		SVGIconPath:            p.SVGIconPath(),
	})
}

func (a *API) listAlgorithms(c *gin.Context) {
	id := c.Param("id")
	p, exists := a.registry.ProviderByID(id)
	if !exists {
		RespondWithError(c, errors.NotFound("provider", id))
		return
	}

	descriptors := p.Algorithms()
	views := make([]AlgorithmView, 0, len(descriptors))
	for _, d := range descriptors {
		views = append(views, algorithmView(p, d))
	}
	RespondOK(c, views)
}

func (a *API) getAlgorithm(c *gin.Context) {
	id := c.Param("id")
	d, p, found := a.registry.AlgorithmByID(id)
	if !found {
		RespondWithError(c, errors.NotFound("algorithm", id))
		return
	}
	RespondOK(c, algorithmView(p, d))
}

func (a *API) refreshProvider(c *gin.Context) {
	id := c.Param("id")
	p, exists := a.registry.ProviderByID(id)
	if !exists {
		RespondWithError(c, errors.NotFound("provider", id))
		return
	}
	if !p.IsActive() {
		RespondWithError(c, errors.ProviderInactive(id))
		return
	}

	if err := p.RefreshAlgorithms(c.Request.Context()); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"provider":       id,
		"algorithmCount": len(p.Algorithms()),
	})
}
