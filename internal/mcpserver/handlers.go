package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pierregondois/lisa/internal/api"
)

func controlPlane() (api.ControlPlaneHandler, error) {
	h := api.GetControlPlane()
	if h == nil {
		return nil, fmt.Errorf("control plane not initialized")
	}
	return h, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleListFeatures(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalog := api.GetFeatureCatalog()
	if catalog == nil {
		return mcp.NewToolResultError("feature catalog not initialized"), nil
	}

	var visible []api.FeatureInfo
	for _, f := range catalog.ListFeatures() {
		if !f.Hidden {
			visible = append(visible, f)
		}
	}
	return jsonResult(visible)
}

func handleListConfigs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cp, err := controlPlane()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	configs, err := cp.ListConfigs()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(configs)
}

func handleCreateConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cp, err := controlPlane()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := cp.CreateConfig(name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("creating configuration %s: %v", name, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("configuration %s created", name)), nil
}

func handleDeleteConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cp, err := controlPlane()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := cp.DeleteConfig(name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("deleting configuration %s: %v", name, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("configuration %s deleted", name)), nil
}

func handleReadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cp, err := controlPlane()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := cp.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func handleWriteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cp, err := controlPlane()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	appendMode := req.GetBool("append", false)

	if err := cp.WriteFile(path, data, appendMode); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("writing %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("wrote %s", path)), nil
}

func handleActivate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cp, err := controlPlane()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	active, err := req.RequireBool("active")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := req.GetString("config", "")

	if err := cp.Activate(name, active); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("activation failed: %v", err)), nil
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	target := name
	if target == "" {
		target = "root"
	}
	return mcp.NewToolResultText(fmt.Sprintf("configuration %s %s", target, state)), nil
}
