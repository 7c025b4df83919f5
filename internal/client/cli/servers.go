package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dkarlovs/tacpanel/internal/client/api"
)

// Servers lists the user's game server instances.
func (a *App) Servers(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	list, err := a.backend.Servers(ctx, a.token())
	if err != nil {
		a.reportAPIError("list servers", err)
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No servers yet. Use 'create' to add one.")
		return nil
	}

	for _, s := range list {
		fmt.Fprintf(a.out, "%s  %-20s %-14s port %-6d players %d/%d  [%s]\n",
			s.ID, s.Name, s.GameType, s.Port, s.CurrentPlayers, s.MaxPlayers, s.Status)
	}
	return nil
}

// CreateServer interactively collects the fields of a new server instance.
func (a *App) CreateServer(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	name, err := GetSimpleText(a.reader, "Server name", a.out)
	if err != nil {
		return err
	}
	gameType, err := GetSimpleText(a.reader, "Game type (arma_reforger / arma_4)", a.out)
	if err != nil {
		return err
	}
	portStr, err := GetSimpleText(a.reader, "Port", a.out)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		fmt.Fprintln(a.out, "Port must be a number.")
		return nil
	}
	maxStr, err := GetSimpleText(a.reader, "Max players", a.out)
	if err != nil {
		return err
	}
	maxPlayers, err := strconv.Atoi(maxStr)
	if err != nil {
		fmt.Fprintln(a.out, "Max players must be a number.")
		return nil
	}
	installPath, err := GetSimpleText(a.reader, "Install path", a.out)
	if err != nil {
		return err
	}

	srv, err := a.backend.CreateServer(ctx, a.token(), api.CreateServerParams{
		Name:        name,
		GameType:    gameType,
		Port:        port,
		MaxPlayers:  maxPlayers,
		InstallPath: installPath,
	})
	if err != nil {
		a.reportAPIError("create server", err)
		return err
	}

	fmt.Fprintf(a.out, "Created %s (%s).\n", srv.Name, srv.ID)
	return nil
}

// ServerAction runs start, stop, or restart against a server.
func (a *App) ServerAction(ctx context.Context, action, id string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	srv, err := a.backend.ServerAction(ctx, a.token(), id, action)
	if err != nil {
		a.reportAPIError(action+" server", err)
		return err
	}

	fmt.Fprintf(a.out, "%s is now %s.\n", srv.Name, srv.Status)
	return nil
}

// EditServer interactively changes a server's settings. Blank answers keep
// the current value.
func (a *App) EditServer(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	name, err := GetSimpleText(a.reader, "New name (blank to keep)", a.out)
	if err != nil {
		return err
	}
	portStr, err := GetSimpleText(a.reader, "New port (blank to keep)", a.out)
	if err != nil {
		return err
	}
	maxStr, err := GetSimpleText(a.reader, "New max players (blank to keep)", a.out)
	if err != nil {
		return err
	}

	var params api.UpdateServerParams
	if name != "" {
		params.Name = &name
	}
	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			fmt.Fprintln(a.out, "Port must be a number.")
			return nil
		}
		params.Port = &port
	}
	if maxStr != "" {
		maxPlayers, err := strconv.Atoi(maxStr)
		if err != nil {
			fmt.Fprintln(a.out, "Max players must be a number.")
			return nil
		}
		params.MaxPlayers = &maxPlayers
	}
	if params.Name == nil && params.Port == nil && params.MaxPlayers == nil {
		fmt.Fprintln(a.out, "Nothing to change.")
		return nil
	}

	srv, err := a.backend.UpdateServer(ctx, a.token(), id, params)
	if err != nil {
		a.reportAPIError("update server", err)
		return err
	}

	fmt.Fprintf(a.out, "Updated %s: port %d, max players %d.\n", srv.Name, srv.Port, srv.MaxPlayers)
	return nil
}

// Resources prints the host utilization snapshot.
func (a *App) Resources(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	res, err := a.backend.SystemResources(ctx, a.token())
	if err != nil {
		a.reportAPIError("fetch system resources", err)
		return err
	}

	fmt.Fprintf(a.out, "CPU:    %.1f%%\n", res.CPUPercent)
	fmt.Fprintf(a.out, "Memory: %.1f%% (%.1f/%.0f GB)\n", res.MemoryPercent, res.MemoryUsedGB, res.MemoryTotalGB)
	fmt.Fprintf(a.out, "Disk:   %.1f%% (%.1f/%.0f GB)\n", res.DiskPercent, res.DiskUsedGB, res.DiskTotalGB)
	return nil
}

// DeleteServer removes a server instance.
func (a *App) DeleteServer(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	if err := a.backend.DeleteServer(ctx, a.token(), id); err != nil {
		a.reportAPIError("delete server", err)
		return err
	}

	fmt.Fprintln(a.out, "Server deleted.")
	return nil
}
