package app

import (
	"io"
	"net/http"

	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/modules/data_reader"
	"github.com/specialistvlad/elementflow/modules/data_writer"
	"github.com/specialistvlad/elementflow/modules/env_vars"
	"github.com/specialistvlad/elementflow/modules/http_request"
	"github.com/specialistvlad/elementflow/modules/print"
	"github.com/specialistvlad/elementflow/modules/redactor"
	"github.com/specialistvlad/elementflow/modules/s3_upload"
	"github.com/specialistvlad/elementflow/modules/tar_archiver"
	"github.com/specialistvlad/elementflow/modules/tar_extractor"
	"github.com/specialistvlad/elementflow/modules/validator"
)

// coreModules is the definitive list of all element units compiled into
// the elementflow binary.
func coreModules(cfg *Config, outW io.Writer, client *http.Client) []registry.Module {
	return []registry.Module{
		&validator.Module{Client: client},
		&data_reader.Module{},
		&tar_archiver.Module{},
		&redactor.Module{Retries: cfg.RedactionRetry, Client: client},
		&tar_extractor.Module{},
		&data_writer.Module{},
		&print.Module{Out: outW},
		&env_vars.Module{},
		&http_request.Module{Client: client},
		&s3_upload.Module{Client: client},
	}
}
