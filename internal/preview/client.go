package preview

// ClientScript drives the preview page. It forwards interactions with the
// rendered control to /ws, swaps in every render, and logs component events.
const ClientScript = `
(function() {
    'use strict';

    var root = document.getElementById('preview');
    var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
    var ws = new WebSocket(protocol + '//' + location.host + '/ws');

    function send(msg) {
        if (ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(msg));
        }
    }

    function swap(html) {
        var active = document.activeElement === root.firstElementChild;
        if (root.setHTMLUnsafe) {
            root.setHTMLUnsafe(html);
        } else {
            root.innerHTML = html;
        }
        if (active) {
            var host = root.firstElementChild;
            var control = host && (host.shadowRoot || host).querySelector('input, textarea');
            if (control) control.focus();
        }
    }

    ws.onmessage = function(e) {
        var msg;
        try {
            msg = JSON.parse(e.data);
        } catch (err) {
            return;
        }
        switch (msg.type) {
            case 'render':
                swap(msg.html);
                break;
            case 'event':
                console.log('[labeled-input]', msg.event, msg.detail);
                break;
            case 'error':
                console.error('[labeled-input]', msg.error);
                break;
        }
    };

    function control(e) {
        var t = e.composedPath()[0];
        return t && (t.tagName === 'INPUT' || t.tagName === 'TEXTAREA') ? t : null;
    }

    document.addEventListener('input', function(e) {
        var t = control(e);
        if (t) send({type: 'input', value: t.value});
    }, true);
    document.addEventListener('change', function(e) {
        if (control(e)) send({type: 'change'});
    }, true);
    document.addEventListener('focusout', function(e) {
        if (control(e)) send({type: 'blur'});
    }, true);
    ['keypress', 'keyup'].forEach(function(type) {
        document.addEventListener(type, function(e) {
            if (control(e)) send({type: type, key: e.key});
        }, true);
    });
    document.addEventListener('click', function(e) {
        var t = e.composedPath()[0];
        if (t && t.tagName === 'LABEL') send({type: 'label'});
    }, true);

    window.labeledInputPreview = {
        attr: function(name, value) {
            send({type: 'attr', name: name, value: value === undefined ? null : String(value)});
        }
    };
})();
`
