package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atinyakov/todokeeper/internal/client/api"
	"github.com/atinyakov/todokeeper/internal/models"
)

var (
	version   string
	buildDate string
)

const requestTimeout = 15 * time.Second

type options struct {
	cmd         string
	baseURL     string
	caFile      string
	sessionFile string
	username    string
	password    string
	id          string
	title       string
	done        bool
	doneSet     bool
	showVer     bool
}

// main parses command-line flags and dispatches to the requested command.
func main() {
	var o options
	flag.StringVar(&o.cmd, "cmd", "", "command: signup | signin | signout | list | add | update | delete | shell")
	flag.StringVar(&o.baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&o.caFile, "ca", "", "path to CA cert trusted for HTTPS")
	flag.StringVar(&o.sessionFile, "session", api.DefaultSessionFile, "path to session file")
	flag.StringVar(&o.username, "username", "", "username for signup/signin")
	flag.StringVar(&o.password, "password", "", "password for signup/signin (prompted when empty)")
	flag.StringVar(&o.id, "id", "", "item id for update/delete")
	flag.StringVar(&o.title, "title", "", "item title for add/update")
	flag.BoolVar(&o.done, "done", false, "item done flag for add/update")
	flag.BoolVar(&o.showVer, "version", false, "show build version and date")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "done" {
			o.doneSet = true
		}
	})

	if o.showVer {
		fmt.Printf("Todo Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	httpClient, err := api.NewHTTPClient(o.caFile)
	if err != nil {
		log.Fatal(err)
	}
	client := api.New(o.baseURL, httpClient)

	session, err := api.LoadSession(o.sessionFile)
	if err != nil {
		log.Fatal(err)
	}
	if session.Token != "" && (session.BaseURL == "" || session.BaseURL == client.BaseURL) {
		client.Token = session.Token
	}

	if err := run(o, client); err != nil {
		log.Fatal(err)
	}
}

func run(o options, client *api.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch o.cmd {
	case "signup":
		if err := credentials(&o); err != nil {
			return err
		}
		user, err := client.Signup(ctx, o.username, o.password)
		if err != nil {
			return err
		}
		fmt.Printf("Signed up %s (id %s). Run -cmd signin next.\n", user.Username, user.ID)
	case "signin":
		if err := credentials(&o); err != nil {
			return err
		}
		user, err := client.Signin(ctx, o.username, o.password)
		if err != nil {
			return err
		}
		err = api.SaveSession(o.sessionFile, api.Session{
			BaseURL:  client.BaseURL,
			UserID:   user.ID,
			Username: user.Username,
			Token:    user.Token,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s.\n", user.Username)
	case "signout":
		if err := api.ClearSession(o.sessionFile); err != nil {
			return err
		}
		fmt.Println("Signed out.")
	case "list":
		return printList(client.List(ctx))
	case "add":
		if o.title == "" {
			return errors.New("please provide -title")
		}
		return printList(client.Add(ctx, o.title, o.done))
	case "update":
		if o.id == "" {
			return errors.New("please provide -id")
		}
		return printList(updateItem(ctx, client, o))
	case "delete":
		if o.id == "" {
			return errors.New("please provide -id")
		}
		return printList(client.Delete(ctx, o.id))
	case "shell":
		repl(client, os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("unknown command: %s", o.cmd)
	}
	return nil
}

func credentials(o *options) error {
	if o.username == "" {
		return errors.New("please provide -username")
	}
	if o.password != "" {
		return nil
	}
	pw, err := api.ReadPassword(os.Stdin, os.Stderr, "Password: ")
	if err != nil {
		return err
	}
	o.password = pw
	return nil
}

func printList(todos []models.Todo, err error) error {
	if err != nil {
		return err
	}
	writeList(os.Stdout, todos)
	return nil
}

func writeList(out io.Writer, todos []models.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(out, "No items.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTITLE")
	for _, t := range todos {
		mark := " "
		if t.Done {
			mark = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\n", t.ID, mark, t.Title)
	}
	_ = tw.Flush()
}

// repl runs the interactive shell loop, accepting commands to manage items.
func repl(client *api.Client, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "todo> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		var (
			todos []models.Todo
			err   error
			show  = true
		)
		switch args[0] {
		case "help":
			fmt.Fprintln(out, "Available commands: help, list, add <title>, done <id>, undo <id>, rename <id>, delete <id>, exit")
			show = false
		case "list":
			todos, err = client.List(ctx)
		case "add":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: add <title>")
				show = false
				break
			}
			todos, err = client.Add(ctx, strings.Join(args[1:], " "), false)
		case "done", "undo":
			if len(args) < 2 {
				fmt.Fprintf(out, "Usage: %s <id>\n", args[0])
				show = false
				break
			}
			todos, err = setDone(ctx, client, args[1], args[0] == "done")
		case "rename":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: rename <id>")
				show = false
				break
			}
			title, ok := api.PromptLine(scanner, out, "New title: ")
			if !ok {
				cancel()
				return
			}
			todos, err = rename(ctx, client, args[1], title)
		case "delete":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: delete <id>")
				show = false
				break
			}
			todos, err = client.Delete(ctx, args[1])
		case "exit":
			cancel()
			fmt.Fprintln(out, "Bye")
			return
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
			show = false
		}
		cancel()

		switch {
		case err != nil:
			fmt.Fprintln(out, "error:", err)
		case show:
			writeList(out, todos)
		}
	}
}

// updateItem changes only what was given on the command line: an empty
// -title keeps the current title and an absent -done keeps the current flag.
func updateItem(ctx context.Context, client *api.Client, o options) ([]models.Todo, error) {
	item, err := find(ctx, client, o.id)
	if err != nil {
		return nil, err
	}
	title, done := item.Title, item.Done
	if o.title != "" {
		title = o.title
	}
	if o.doneSet {
		done = o.done
	}
	return client.Update(ctx, o.id, title, done)
}

// setDone and rename fetch the item first because PUT replaces both fields.
func setDone(ctx context.Context, client *api.Client, id string, done bool) ([]models.Todo, error) {
	item, err := find(ctx, client, id)
	if err != nil {
		return nil, err
	}
	return client.Update(ctx, id, item.Title, done)
}

func rename(ctx context.Context, client *api.Client, id, title string) ([]models.Todo, error) {
	item, err := find(ctx, client, id)
	if err != nil {
		return nil, err
	}
	return client.Update(ctx, id, title, item.Done)
}

func find(ctx context.Context, client *api.Client, id string) (models.Todo, error) {
	todos, err := client.List(ctx)
	if err != nil {
		return models.Todo{}, err
	}
	for _, t := range todos {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Todo{}, fmt.Errorf("no item with id %s", strconv.Quote(id))
}
