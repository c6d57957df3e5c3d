package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

var testSymbolSeq int64

func sym(name string, kind models.SymbolKind, fqn string) models.Symbol {
	testSymbolSeq++
	return models.Symbol{
		ID:            testSymbolSeq,
		Name:          name,
		QualifiedName: fqn,
		Kind:          kind,
	}
}

func TestClassifyLayer_APINamespace(t *testing.T) {
	tests := []string{
		"app.controller.UserController",
		"app.handlers.AuthHandler",
		"api.v1.OrderEndpoint",
		"web.routes.GetUser",
		"app.rest.Client",
		"graphql.resolvers.Query",
	}
	for _, fqn := range tests {
		got := classifyLayer(sym("X", models.SymbolKindClass, fqn))
		assert.Equalf(t, LayerAPI, got, "FQN %q should classify as api", fqn)
	}
}

func TestClassifyLayer_DataNamespace(t *testing.T) {
	tests := []string{
		"app.repository.CustomerRepo",
		"app.dal.DataAccess",
		"persistence.UserStore",
		"app.dao.OrderDAO",
		"app.models.Customer",
	}
	for _, fqn := range tests {
		got := classifyLayer(sym("X", models.SymbolKindClass, fqn))
		assert.Equalf(t, LayerData, got, "FQN %q should classify as data", fqn)
	}
}

func TestClassifyLayer_BusinessNamespace(t *testing.T) {
	tests := []string{
		"app.service.OrderService",
		"domain.Customer",
		"app.core.ProcessEngine",
		"business.logic.Calculator",
		"app.usecases.PlaceOrder",
	}
	for _, fqn := range tests {
		got := classifyLayer(sym("X", models.SymbolKindClass, fqn))
		assert.Equalf(t, LayerBusiness, got, "FQN %q should classify as business", fqn)
	}
}

func TestClassifyLayer_InfraNamespace(t *testing.T) {
	tests := []string{
		"app.config.AppConfig",
		"app.infrastructure.Startup",
		"app.middleware.AuthMiddleware",
		"app.logging.Logger",
		"setup.Bootstrap",
	}
	for _, fqn := range tests {
		got := classifyLayer(sym("X", models.SymbolKindClass, fqn))
		assert.Equalf(t, LayerInfrastructure, got, "FQN %q should classify as infrastructure", fqn)
	}
}

func TestClassifyLayer_CrossCuttingKinds(t *testing.T) {
	tests := []models.SymbolKind{
		models.SymbolKindInterface, models.SymbolKindEnum, models.SymbolKindConstant,
	}
	for _, kind := range tests {
		got := classifyLayer(sym("X", kind, "app.something.X"))
		assert.Equalf(t, LayerCrossCutting, got, "kind %q should classify as cross-cutting", kind)
	}
}

func TestClassifyLayer_Unknown(t *testing.T) {
	got := classifyLayer(sym("Foo", models.SymbolKindClass, "com.example.Foo"))
	assert.Equal(t, LayerUnknown, got)
}

func TestClassifyLayer_APIPrecedesDataNamespace(t *testing.T) {
	// If FQN matches both API and data patterns, API comes first.
	got := classifyLayer(sym("DataController", models.SymbolKindClass, "api.data.DataController"))
	assert.Equal(t, LayerAPI, got)
}

func TestSplitFQN_DotSeparated(t *testing.T) {
	segments := splitFQN("com.example.service.orderservice")
	assert.Len(t, segments, 4)
}

func TestSplitFQN_SlashSeparated(t *testing.T) {
	segments := splitFQN("app/handlers/auth")
	assert.Len(t, segments, 3)
}

func TestSplitFQN_BackslashSeparated(t *testing.T) {
	segments := splitFQN(`App\Controllers\UserController`)
	assert.Len(t, segments, 3)
}

func TestSplitFQN_MixedDelimiters(t *testing.T) {
	segments := splitFQN("dbo.Customers/columns")
	assert.Len(t, segments, 3)
}

func TestSplitFQN_Empty(t *testing.T) {
	segments := splitFQN("")
	assert.Len(t, segments, 0)
}

func TestMatchesAnyPattern_ExactSegmentMatch(t *testing.T) {
	assert.True(t, matchesAnyPattern("app.service.ordersvc", businessNamespacePatterns))
}

func TestMatchesAnyPattern_NoMatch(t *testing.T) {
	assert.False(t, matchesAnyPattern("com.example.foo", businessNamespacePatterns))
}

func TestMatchesAnyPattern_CaseHandling(t *testing.T) {
	assert.True(t, matchesAnyPattern("app.controller.x", apiNamespacePatterns))
}
